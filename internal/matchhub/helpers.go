package matchhub

import "errors"

var ErrNoValueForKey = errors.New("no value found for key")
var ErrValueNotAsserted = errors.New("value could not be asserted to specified type")

func stringFromMap(src map[string]any, key string) (string, error) {
	data, ok := src[key]
	if !ok {
		return "", ErrNoValueForKey
	}
	value, ok := data.(string)
	if !ok {
		return "", ErrValueNotAsserted
	}
	return value, nil
}

func intFromMap(src map[string]any, key string) (int, error) {
	data, ok := src[key]
	if !ok {
		return 0, ErrNoValueForKey
	}
	// encoding/json decodes numbers in a generic map as float64.
	value, ok := data.(float64)
	if !ok {
		return 0, ErrValueNotAsserted
	}
	return int(value), nil
}

func boolFromMap(src map[string]any, key string) (bool, error) {
	data, ok := src[key]
	if !ok {
		return false, ErrNoValueForKey
	}
	value, ok := data.(bool)
	if !ok {
		return false, ErrValueNotAsserted
	}
	return value, nil
}
