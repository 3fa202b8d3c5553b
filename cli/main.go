// Package main provides a terminal client for the Lumora WebSocket API.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	"github.com/akshatyadav31/Lumora-Ai/internal/transport/ws"
)

// maxTableRows caps how many result rows are printed per message.
const maxTableRows = 20

// Client represents a WebSocket client.
type Client struct {
	conn    *websocket.Conn
	baseURL string
	done    chan struct{}
	out     io.Writer
}

// NewClient connects to the socket at addr. HTTP calls go to the same host.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	base, err := httpBase(addr)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{
		conn:    conn,
		baseURL: base,
		done:    make(chan struct{}),
		out:     os.Stdout,
	}, nil
}

// httpBase turns ws://host:port/v1/ws into http://host:port.
func httpBase(addr string) (string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String(), nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// Ask sends a question.
func (c *Client) Ask(content string) error {
	return c.conn.WriteJSON(ws.AskFrame{
		BaseFrame: ws.BaseFrame{
			Type:      ws.TypeAsk,
			Ts:        time.Now().UnixMilli(),
			RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
		},
		Content: content,
	})
}

// Upload posts a local file as a new dataset.
func (c *Client) Upload(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	return c.post("/v1/datasets", w.FormDataContentType(), &body)
}

// Use selects a dataset by id.
func (c *Client) Use(datasetID string) error {
	return c.post("/v1/datasets/"+url.PathEscape(datasetID)+"/select", "application/json", nil)
}

// Datasets prints the dataset list.
func (c *Client) Datasets() error {
	resp, err := http.Get(c.baseURL + "/v1/datasets")
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	defer resp.Body.Close()

	var list struct {
		Datasets        []domain.Dataset `json:"datasets"`
		ActiveDatasetID string           `json:"active_dataset_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decode datasets: %w", err)
	}
	for _, ds := range list.Datasets {
		marker := " "
		if ds.DatasetID == list.ActiveDatasetID {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %-40s %-28s %d rows\n", marker, ds.DatasetID, ds.Name, ds.RowCount)
	}
	return nil
}

func (c *Client) post(path, contentType string, body io.Reader) error {
	resp, err := http.Post(c.baseURL+path, contentType, body)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %s", resp.Status, e.Error)
	}
	return nil
}

// ReadMessages reads and prints frames from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			var frame ws.ServerFrame
			if err := c.conn.ReadJSON(&frame); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}
			c.print(frame)
		}
	}
}

func (c *Client) print(frame ws.ServerFrame) {
	switch frame.Type {
	case ws.TypeMessage:
		printMessage(c.out, frame.Message)
	case ws.TypeState:
		if frame.State != nil && frame.State.State == domain.TurnStateSubmitting {
			fmt.Fprintln(c.out, "... thinking")
		}
	case ws.TypeError:
		if frame.Error != nil {
			fmt.Fprintf(c.out, "\n[error] %s\n", frame.Error.Message)
		}
	}
}

func printMessage(w io.Writer, msg *domain.Message) {
	if msg == nil || msg.Role == domain.RoleUser {
		return
	}
	fmt.Fprintf(w, "\n%s\n", msg.Content)
	if msg.SQL != "" {
		fmt.Fprintf(w, "\n  SQL: %s\n", msg.SQL)
	}
	if len(msg.Data) > 0 {
		fmt.Fprintln(w)
		printTable(w, msg.Data)
	}
	if v := msg.Visualization; v != nil {
		fmt.Fprintf(w, "\n  Chart: %s of %s by %s (%s)\n", v.Type, v.DataKey, v.XAxisKey, v.Title)
	}
}

// printTable renders rows as a fixed-width text table using the first row's
// columns.
func printTable(w io.Writer, rows []domain.Row) {
	cols := rows[0].Keys()
	if len(rows) > maxTableRows {
		defer fmt.Fprintf(w, "  ... %d more rows\n", len(rows)-maxTableRows)
		rows = rows[:maxTableRows]
	}

	widths := make([]int, len(cols))
	cells := make([][]string, len(rows))
	for j, col := range cols {
		widths[j] = len(col)
	}
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, col := range cols {
			v, _ := row.Get(col)
			text := v.String()
			if v.IsNull() {
				text = ""
			}
			cells[i][j] = text
			if len(text) > widths[j] {
				widths[j] = len(text)
			}
		}
	}

	line := func(values []string) {
		parts := make([]string, len(values))
		for j, v := range values {
			parts[j] = fmt.Sprintf("%-*s", widths[j], v)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, " | "))
	}
	line(cols)
	sep := make([]string, len(cols))
	for j := range cols {
		sep[j] = strings.Repeat("-", widths[j])
	}
	line(sep)
	for _, r := range cells {
		line(r)
	}
}

func main() {
	addr := flag.String("url", "ws://localhost:8080/v1/ws", "WebSocket server address")
	flag.Parse()

	log.SetFlags(log.Ltime)

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Connected.")
	fmt.Println("\nType a question and press Enter to send.")
	fmt.Println("Commands: /datasets, /use <id>, /upload <file>, /quit")

	// Start reading messages in background
	go client.ReadMessages()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Read user input
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			cmd, arg, _ := strings.Cut(input, " ")
			arg = strings.TrimSpace(arg)
			switch cmd {
			case "/quit":
				fmt.Println("Bye!")
				return
			case "/datasets":
				err = client.Datasets()
			case "/use":
				err = client.Use(arg)
			case "/upload":
				err = client.Upload(arg)
			default:
				err = client.Ask(input)
			}
			if err != nil {
				log.Printf("Error: %v", err)
			}
		}
	}
}
