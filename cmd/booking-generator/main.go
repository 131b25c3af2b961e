// booking-generator feeds the API with synthetic booking requests for
// load testing. It registers a fake client account on startup, logs in,
// then fires booking requests at the configured rate against an existing
// performer and service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"math/rand"

	"github.com/go-faker/faker/v4"
)

// Request shapes must match what the booking API expects.
type RegisterRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type BookingRequest struct {
	PerformerID   string `json:"performer_id"`
	ServiceID     string `json:"service_id"`
	EventDatetime string `json:"event_datetime"`
}

func main() {
	// 1. Setting up flags
	baseURL := flag.String("base-url", "http://localhost:8080", "Base URL of the booking API")
	performerID := flag.String("performer", "", "Performer ID to book")
	serviceID := flag.String("service", "", "Service ID to book")
	rps := flag.Int("rps", 20, "Requests per second")
	flag.Parse()

	if *performerID == "" || *serviceID == "" {
		log.Fatal("flags -performer and -service are required")
	}

	// 2. Register and log in a throwaway client account
	token, err := registerAndLogin(*baseURL)
	if err != nil {
		log.Fatalf("ERROR: failed to set up client account: %v", err)
	}

	target := *baseURL + "/api/v1/bookings"
	log.Printf("Starting generator: target=%s, rps=%d\n", target, *rps)

	// 3. Managing the request frequency via ticker
	ticker := time.NewTicker(time.Second / time.Duration(*rps))
	defer ticker.Stop()

	// 4. Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Main loop
	for {
		select {
		case <-ticker.C:
			// Start sending in a goroutine so as not to block the ticker
			go sendRequest(target, token, *performerID, *serviceID)
		case <-ctx.Done():
			log.Println("Shutting down generator...")
			return
		}
	}
}

// registerAndLogin creates a fake client account and returns its token.
func registerAndLogin(baseURL string) (string, error) {
	creds := RegisterRequest{
		Username: faker.Username(),
		Phone:    faker.Phonenumber(),
		Password: faker.Password(),
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}
	resp, err := http.Post(baseURL+"/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("register returned status %d", resp.StatusCode)
	}
	log.Printf("Registered fake client: %s", creds.Username)

	loginBody, err := json.Marshal(map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return "", err
	}
	resp, err = http.Post(baseURL+"/login", "application/json", bytes.NewBuffer(loginBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", err
	}
	return login.Token, nil
}

func sendRequest(url, token, performerID, serviceID string) {
	eventAt := time.Now().AddDate(0, 0, 1+rand.Intn(60)).Truncate(time.Hour)
	reqData := BookingRequest{
		PerformerID:   performerID,
		ServiceID:     serviceID,
		EventDatetime: eventAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(reqData)
	if err != nil {
		log.Printf("ERROR: failed to marshal request: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		log.Printf("ERROR: failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("ERROR: failed to send request: %v", err)
		return
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body : %v", err)
		}
	}()

	if resp.StatusCode != http.StatusCreated {
		log.Printf("WARN: received non-201 status code: %d", resp.StatusCode)
	} else {
		log.Printf("INFO: booking created, status: %d", resp.StatusCode)
	}
}
