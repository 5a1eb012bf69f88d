package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

type envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
}

var baseURL = "http://localhost:5000/api/v1"

// Pretty print JSON helper
func prettyPrint(raw json.RawMessage) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (int, *envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, &env, nil
}

func step(title, method, url, token string, body interface{}) *envelope {
	color.Yellow("\n%s", title)
	status, env, err := sendRequest(method, url, token, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	switch env.Status {
	case "success":
		color.Green("Status: %d %s", status, env.Message)
	case "warning":
		color.Magenta("Status: %d %s", status, env.Message)
	default:
		color.Red("Status: %d %s (%s)", status, env.Message, env.ErrorCode)
	}
	if len(env.Data) > 0 {
		prettyPrint(env.Data)
	}
	return env
}

func main() {
	if u := os.Getenv("BASE_URL"); u != "" {
		baseURL = u
	}
	color.Cyan("🚀 Starting WellMate API smoke test against %s\n", baseURL)

	username := fmt.Sprintf("smoke_%d", time.Now().Unix())
	credentials := map[string]string{"username": username, "password": "smoke-pass-123"}

	step("1. Register", http.MethodPost, "/auth/register", "", map[string]string{
		"username":  username,
		"password":  credentials["password"],
		"full_name": "Smoke Test",
	})

	login := step("2. Login", http.MethodPost, "/auth/login", "", credentials)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(login.Data, &tokens)
	if tokens.AccessToken == "" {
		color.Red("No access token, aborting")
		os.Exit(1)
	}
	token := tokens.AccessToken

	step("3. Profile", http.MethodGet, "/users/profile", token, nil)

	chat := step("4. Physical chat (new session)", http.MethodPost, "/health/physical/text", token, map[string]string{"message": "最近总是头疼怎么办？"})
	var reply struct {
		SessionId *string `json:"session_id"`
	}
	_ = json.Unmarshal(chat.Data, &reply)
	if reply.SessionId != nil {
		step("5. Physical chat (same session)", http.MethodPost, "/health/physical/text", token, map[string]string{
			"message":    "需要去医院吗？",
			"session_id": *reply.SessionId,
		})
		step("6. Session detail", http.MethodGet, "/health/sessions/"+*reply.SessionId, token, nil)
	}

	step("7. Add health data", http.MethodPost, "/health/data", token, map[string]interface{}{"data_type": "heart_rate", "value": 72})
	step("8. Stats (week)", http.MethodGet, "/health/data/stats?period=week", token, nil)
	step("9. Sessions", http.MethodGet, "/health/sessions", token, nil)

	color.Cyan("\n✅ Smoke test finished")
}
