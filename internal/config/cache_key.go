package config

import "fmt"

type CacheKeyStruct struct{}

// StudentSessionKey returns the Redis key holding the active login JTI
// for a student. A login overwrites it, invalidating older devices.
func (r *CacheKeyStruct) StudentSessionKey(studentID int64) string {
	return fmt.Sprintf("login:student:%d", studentID)
}

// AdminSessionKey returns the Redis key holding the active login JTI
// for an admin.
func (r *CacheKeyStruct) AdminSessionKey(adminID int64) string {
	return fmt.Sprintf("login:admin:%d", adminID)
}

var CacheKey = &CacheKeyStruct{}
