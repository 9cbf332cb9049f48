package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
)

// User is the backend's user record. The client treats it as an opaque JSON
// object; the getters read the fields the CLI displays.
type User map[string]any

// Merge returns a copy of u with the keys of partial written over it
func (u User) Merge(partial User) User {
	merged := make(User, len(u)+len(partial))
	for k, v := range u {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of u, or nil for a nil user
func (u User) Clone() User {
	if u == nil {
		return nil
	}
	return u.Merge(nil)
}

func (u User) Str(key string) string {
	switch v := u[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (u User) Int(key string) int {
	switch v := u[key].(type) {
	case float64:
		return int(math.Round(v))
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// ID returns "id", falling back to Mongo-style "_id"
func (u User) ID() string {
	if id := u.Str("id"); id != "" {
		return id
	}
	return u.Str("_id")
}

func (u User) Username() string { return u.Str("username") }
func (u User) Email() string    { return u.Str("email") }
func (u User) Level() int       { return u.Int("level") }
func (u User) Experience() int  { return u.Int("experience") }
func (u User) Streak() int      { return u.Int("streak") }
func (u User) TotalSolved() int { return u.Int("totalSolved") }

// FlexibleID accepts ids sent either as JSON strings or numbers
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// Envelope is the {success, message} wrapper used by the content endpoints
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Err converts success:false into an *APIError
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	message := e.Message
	if message == "" {
		message = "request was not successful"
	}
	return &APIError{StatusCode: http.StatusOK, Message: message}
}
