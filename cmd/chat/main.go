package main

import "auth-fabric/internal/downstream"

func main() {
	downstream.Run("chat-service")
}
