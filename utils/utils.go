package utils

import (
	"strconv"
)

// ErrorStrings converts errors to their messages, nil errors are skipped
func ErrorStrings(errs []error) []string {
	result := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			result = append(result, err.Error())
		}
	}
	return result
}

// StringToUInt64 returns 0 for anything that is not a positive number
func StringToUInt64(in string) uint64 {
	i, _ := strconv.ParseUint(in, 10, 64)
	return i
}
