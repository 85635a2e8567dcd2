// Package response holds the JSON response helpers shared by all HTTP
// handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform success wrapper.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// errEnvelope is the uniform error wrapper.
type errEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON writes an arbitrary status with a success envelope.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// OK writes 200 with the payload.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created writes 201 with the payload.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error writes the status with an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errEnvelope{Success: false, Error: message})
}
