package common

import "fmt"

func RedisKeyUserScope(userID string) string {
	return fmt.Sprintf("progression:scope:%s", userID)
}

func RedisKeyMiningJob(userID string) string {
	return fmt.Sprintf("progression:mining:%s", userID)
}
