package config

import "errors"

var (
	ErrInvalidStorageConfigs   = errors.New("invalid storage configuration")
	ErrInvalidUIConfigs        = errors.New("invalid ui configuration")
	ErrInvalidLogConfigs       = errors.New("invalid logging configuration")
	ErrInvalidGeneratorConfigs = errors.New("invalid load generator configuration")
)
