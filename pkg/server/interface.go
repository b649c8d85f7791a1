/*
Package server implements msgpack IPC for word completion services.

The server answers prefix completion requests over any byte stream: TCP
connections accepted by Serve, or stdin/stdout through ServeConn.
Requests and responses are msgpack maps with short keys, processed in order
per connection with timing info included in responses.

# IPC

Each message carries an ID that is echoed back, so clients can match
responses even when they pipeline requests.

Completion requests use mainly this structure:

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with suggestions ordered by rank, highest first:

	{"id": "req_001", "s": [{"w": "america", "r": 912}, {"w": "amenity", "r": 40}], "c": 2, "t": 145}

"t" is the search time in microseconds.

Two service commands exist besides completion:

	{"id": "h1", "cmd": "health"}
	{"id": "s1", "cmd": "stats"}

Failed requests keep the ID and carry an error string and a status code:

	{"id": "req_002", "e": "prefix exceeds 64 characters", "code": 400}

msgpack encoding has ~30 to 50% smaller message sizes compared to JSON.
*/
package server

// Commands understood by the server. An empty command means CommandComplete.
const (
	CommandComplete = "complete"
	CommandHealth   = "health"
	CommandStats    = "stats"
)

// Request is a single client message.
type Request struct {
	ID      string `msgpack:"id"`
	Command string `msgpack:"cmd,omitempty"`
	Prefix  string `msgpack:"p"`
	Limit   int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank int    `msgpack:"r"`
}

// Response answers one Request.
type Response struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
	Status      string                 `msgpack:"status,omitempty"`
	Stats       map[string]int         `msgpack:"stats,omitempty"`
	Error       string                 `msgpack:"e,omitempty"`
	Code        int                    `msgpack:"code,omitempty"`
}
