package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"nexus-project/collaboration-service/clients"
	"nexus-project/collaboration-service/handlers"
	"nexus-project/collaboration-service/logging"
	"nexus-project/collaboration-service/middleware"
	"nexus-project/collaboration-service/repositories"
	"nexus-project/collaboration-service/services"
	"nexus-project/collaboration-service/ws"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, User-ID, X-Client-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Collaboration Service...")
	err := godotenv.Load(".env")
	if err != nil {
		logging.Logger.Fatalf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	usersServiceURL := os.Getenv("USERS_SERVICE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	teamRepo := repositories.NewMongoTeamRepository(db.Collection("teams"), db.Collection("members"))
	taskRepo := repositories.NewMongoTaskRepository(db.Collection("shared_tasks"))

	usersBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "UsersServiceCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	identityClient := clients.NewIdentityClient(usersServiceURL, &http.Client{Timeout: 5 * time.Second}, usersBreaker)

	hub := ws.NewHub()
	teamService := services.NewTeamService(teamRepo, identityClient, hub)
	taskService := services.NewTaskService(taskRepo, teamRepo, teamService, hub)

	teamHandler := handlers.NewTeamHandler(teamService)
	taskHandler := handlers.NewTaskHandler(taskService)
	wsHandler := handlers.NewWSHandler(hub, teamService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/collaboration").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/teams", teamHandler.CreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams", teamHandler.ListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamId}", teamHandler.UpdateTeam).Methods(http.MethodPut)
	api.HandleFunc("/teams/{teamId}/members", teamHandler.GetMembers).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamId}/members", teamHandler.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/teams/{teamId}/members/{memberId}/role", teamHandler.ChangeMemberRole).Methods(http.MethodPatch)
	api.HandleFunc("/teams/{teamId}/members/{memberId}", teamHandler.RemoveMember).Methods(http.MethodDelete)

	api.HandleFunc("/teams/{teamId}/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/teams/{teamId}/tasks", taskHandler.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskId}/assign", taskHandler.AssignTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskId}/comments", taskHandler.AddComment).Methods(http.MethodPost)

	api.HandleFunc("/teams/{teamId}/ws", wsHandler.JoinTeamChannel).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
