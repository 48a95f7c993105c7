package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"munchmate_server/routes"
	"munchmate_server/services"
	"munchmate_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and the session store
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	store := services.NewDynamoSessionStore(dynamoService)
	log.Println("DynamoDB client initialized.")

	// Socket.IO server for session update fanout
	socketServer := socket.NewSocketServer()
	notifier := &socket.Broadcaster{Server: socketServer}
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Initialize Services
	matchService := &services.MatchService{Store: store, Notifier: notifier}
	sessionService := &services.SessionService{Store: store, Notifier: notifier}
	swipeService := &services.SwipeService{Store: store, Matches: matchService, Notifier: notifier}
	placesService := services.NewPlacesServiceFromEnv()
	photoService, err := services.NewPhotoService()
	if err != nil {
		log.Fatalf("Failed to initialize photo service: %v", err)
	}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to MunchMate")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterSessionRoutes(r, sessionService, placesService)
	routes.RegisterSwipeRoutes(r, swipeService)
	routes.RegisterPhotoRoutes(r, photoService)
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
