package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	lksdk "github.com/livekit/server-sdk-go/v2"
)

type tokenResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	RoomName  string `json:"room_name"`
	Identity  string `json:"identity"`
	SessionID string `json:"session_id"`
}

type dataMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	fmt.Println("[CLIENT] Requesting guest token...")
	resp, err := http.Post(apiURL+"/v1/livekit/quick_token", "application/json", nil)
	if err != nil {
		log.Fatal("quick_token:", err)
	}
	defer resp.Body.Close()

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		log.Fatal("decode token:", err)
	}
	fmt.Printf("[CLIENT] Session %s, room %s\n", tok.SessionID, tok.RoomName)

	room, err := lksdk.ConnectToRoomWithToken(tok.URL, tok.Token, &lksdk.RoomCallback{
		ParticipantCallback: lksdk.ParticipantCallback{
			OnDataPacket: func(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
				user, ok := data.(*lksdk.UserDataPacket)
				if !ok {
					return
				}
				var msg dataMessage
				if err := json.Unmarshal(user.Payload, &msg); err != nil {
					return
				}
				switch msg.Type {
				case "agent_response":
					fmt.Printf("[AGENT] %s\n", msg.Text)
				case "user_transcription":
					fmt.Printf("[YOU]   %s\n", msg.Text)
				}
			},
		},
	})
	if err != nil {
		log.Fatal("connect room:", err)
	}
	defer room.Disconnect()

	fmt.Println("[CLIENT] Connected, starting relay...")
	relayResp, err := http.Post(apiURL+"/v1/session/"+tok.SessionID+"/relay", "application/json", nil)
	if err != nil {
		log.Fatal("start relay:", err)
	}
	relayResp.Body.Close()
	if relayResp.StatusCode >= 300 {
		log.Fatalf("start relay: status %d", relayResp.StatusCode)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("[CLIENT] Shutting down...")
		room.Disconnect()
		os.Exit(0)
	}()

	fmt.Println("[CLIENT] Type a message and press enter (ctrl-c to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(dataMessage{Type: "user_text_input", Text: text}); err != nil {
			fmt.Printf("[CLIENT] Encode error: %v\n", err)
			continue
		}

		err := room.LocalParticipant.PublishDataPacket(
			lksdk.UserData(buf.Bytes()),
			lksdk.WithDataPublishReliable(true),
		)
		if err != nil {
			fmt.Printf("[CLIENT] Publish error: %v\n", err)
		}
	}
}
