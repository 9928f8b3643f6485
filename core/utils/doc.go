// Package utils provides conversion helpers for loosely typed database values.
package utils
