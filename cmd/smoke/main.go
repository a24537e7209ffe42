// Command smoke drives a running server through a full chat round trip.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func (c *client) send(method, path string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// stream posts a chat turn and echoes data stream frames as they arrive.
func (c *client) stream(chatId, text string) error {
	payload := map[string]interface{}{
		"id": chatId,
		"messages": []map[string]interface{}{{
			"id":      uuid.NewString(),
			"role":    "user",
			"content": text,
			"parts":   []map[string]string{{"type": "text", "text": text}},
		}},
	}
	data, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "0:"):
			color.White("  %s", line)
		case strings.HasPrefix(line, "g:"):
			color.Magenta("  %s", line)
		case strings.HasPrefix(line, "3:"):
			color.Red("  %s", line)
		default:
			color.Blue("  %s", line)
		}
	}
	return scanner.Err()
}

func must(step string, resp *http.Response, body []byte, err error) []byte {
	if err != nil {
		color.Red("%s failed: %v", step, err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("%s failed: %s", step, resp.Status)
		prettyPrint(body)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	return body
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	email := flag.String("email", fmt.Sprintf("smoke-%d@example.com", time.Now().Unix()), "account email")
	password := flag.String("password", "smoke-password", "account password")
	prompt := flag.String("prompt", "Say hello in one short sentence.", "message to send")
	flag.Parse()

	c := &client{baseURL: strings.TrimRight(*baseURL, "/"), http: &http.Client{}}
	credentials := map[string]string{"email": *email, "password": *password}

	color.Cyan("🚀 Starting chat API smoke test against %s\n", c.baseURL)

	color.Yellow("\n[AUTH] 1. Register %s", *email)
	resp, body, err := c.send(http.MethodPost, "/auth/register", credentials)
	if err == nil && resp.StatusCode == http.StatusConflict {
		color.Yellow("User exists, logging in instead")
		resp, body, err = c.send(http.MethodPost, "/auth/login", credentials)
	}
	body = must("Register", resp, body, err)

	var auth struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.Data.AccessToken == "" {
		color.Red("No access token in response")
		prettyPrint(body)
		os.Exit(1)
	}
	c.token = auth.Data.AccessToken

	color.Yellow("\n[MODELS] 2. List chat models")
	resp, body, err = c.send(http.MethodGet, "/models", nil)
	prettyPrint(must("Models", resp, body, err))

	chatId := uuid.NewString()
	color.Yellow("\n[CHAT] 3. Stream a turn in chat %s", chatId)
	if err := c.stream(chatId, *prompt); err != nil {
		color.Red("Stream failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\n[CHAT] 4. Load chat")
	resp, body, err = c.send(http.MethodGet, "/chat/"+chatId, nil)
	prettyPrint(must("Chat", resp, body, err))

	color.Yellow("\n[HISTORY] 5. List history")
	resp, body, err = c.send(http.MethodGet, "/history", nil)
	prettyPrint(must("History", resp, body, err))

	color.Yellow("\n[USAGE] 6. Daily usage")
	resp, body, err = c.send(http.MethodGet, "/usage", nil)
	prettyPrint(must("Usage", resp, body, err))

	color.Yellow("\n[CHAT] 7. Delete chat")
	resp, body, err = c.send(http.MethodDelete, "/chat?id="+chatId, nil)
	must("Delete", resp, body, err)

	color.Cyan("\n✅ Smoke test completed")
}
