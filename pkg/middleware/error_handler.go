package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"tambo-herd/pkg/errors"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// requestLogger is the process-wide logger the middleware reports through.
// Set once at startup.
var requestLogger = zap.NewNop()

// SetLogger wires the middleware to the application logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		requestLogger = l
	}
}

// RequestID generates a unique request ID for each request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recovery turns panics into 500 responses instead of dropped connections.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestLogger.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Any("panic", err),
					zap.ByteString("stack", debug.Stack()))
				HandleError(w, r, errors.NewInternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestLogging logs every request with its duration.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		requestLogger.Info("request completed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// HandleError writes an error response, mapping ApplicationError to its
// status and anything else to 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())

	if appErr, ok := err.(*errors.ApplicationError); ok {
		requestLogger.Warn("request failed",
			zap.String("request_id", requestID),
			zap.String("code", appErr.Code),
			zap.Int("status", appErr.Status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("message", appErr.Message))
		sendErrorResponse(w, requestID, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	requestLogger.Error("unexpected error",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	sendErrorResponse(w, requestID, 500, "INTERNAL_ERROR", "Internal server error")
}

func sendErrorResponse(w http.ResponseWriter, requestID string, statusCode int, code, message string) {
	response := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"request_id": requestID,
		"timestamp":  time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func sendUnauthorized(w http.ResponseWriter, message string) {
	sendErrorResponse(w, "", http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func sendForbidden(w http.ResponseWriter, message string) {
	sendErrorResponse(w, "", http.StatusForbidden, "FORBIDDEN", message)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
