package service

import (
	"encoding/json"
	"log"
	"time"
)

// logJSON emits one JSON log line, matching the shape used elsewhere in the
// service (migration, tracing). The workflow uses it for post-commit storage
// failures that do not abort the operation.
func logJSON(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"msg":       msg,
		"component": "service",
	}
	for k, v := range fields {
		entry[k] = v
	}

	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal service log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
