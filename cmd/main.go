package main

import (
	"log"
	"net/http"
	"os"

	"wildbutton/api"
	"wildbutton/config"
	"wildbutton/db"
	"wildbutton/scheduler"
	"wildbutton/utils"
)

func main() {
	config.LoadEnv()
	db.Init()
	utils.InitCrypto()
	utils.InitRedis()

	store := db.NewStore(db.DB)
	slack := api.NewClient()

	sched := scheduler.New(store, slack, utils.NewClaimer(utils.RedisClient))
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(store, slack, sched)
	router := SetupRouter(handler, os.Getenv("SLACK_SIGNING_SECRET"))

	port := config.Getenv("PORT", "8080")

	log.Println("Server running on port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal("Server failed:", err)
	}
}
