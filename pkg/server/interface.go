/*
Package server implements msgpack IPC for dictionary hover lookups.

An editor extension spawns the binary and talks to it over stdin/stdout.
Every message is one msgpack map. Requests name an action and carry an ID that
is echoed back in the response, so a client may pipeline requests.

# IPC

On start the server writes a ready message:

	{"status": "ready"}

Lookups resolve a raw token, exact match first and then with one trailing
character dropped:

	{"id": "req_001", "action": "lookup", "token": "ORDER_TBL"}
	{"id": "req_001", "found": true, "key": "ORDER_TBL", "requested": "ORDER_TBL", "exact": true, "value": "...", "content": "...", "t": 12}

Hover takes the line under the cursor and a character column instead, and looks
up the [A-Za-z0-9_]+ word touching that column:

	{"id": "req_002", "action": "hover", "line": "SELECT * FROM ORDER_TBLS", "col": 16}

"content" is the markdown a host should show. For a relaxed match it starts with
a notice naming the key that was actually used.

Other actions:

	{"id": "c1", "action": "complete", "prefix": "ORD", "limit": 10}
	{"id": "r1", "action": "reload"}
	{"id": "s1", "action": "stats"}
	{"id": "d1", "action": "diagnostics", "limit": 50}
	{"id": "p1", "action": "ping"}

A failed request gets an error with an HTTP-like code, 400 for bad input and
500 for server faults:

	{"id": "req_003", "e": "unknown action: foo", "c": 400}

When the file watcher rebuilds the dictionary the server pushes a reload
response with an empty ID and status "changed".
*/
package server

// Request is the envelope of every client message. Fields not used by an
// action are ignored.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	Token  string `msgpack:"token,omitempty"`
	Line   string `msgpack:"line,omitempty"`
	Col    int    `msgpack:"col,omitempty"`
	Prefix string `msgpack:"prefix,omitempty"`
	Limit  int    `msgpack:"limit,omitempty"`
}

// LookupResponse answers lookup and hover.
type LookupResponse struct {
	ID        string `msgpack:"id"`
	Found     bool   `msgpack:"found"`
	Key       string `msgpack:"key,omitempty"`
	Requested string `msgpack:"requested,omitempty"`
	Exact     bool   `msgpack:"exact"`
	Value     string `msgpack:"value,omitempty"`
	Content   string `msgpack:"content,omitempty"`
	TimeTaken int64  `msgpack:"t"` // microseconds
}

// CompleteResponse lists keys sharing a prefix, sorted.
type CompleteResponse struct {
	ID    string   `msgpack:"id"`
	Keys  []string `msgpack:"keys"`
	Count int      `msgpack:"c"`
}

// SourceStatus is the wire form of one source.Report.
type SourceStatus struct {
	Path       string `msgpack:"path"`
	Format     string `msgpack:"format"`
	Encoding   string `msgpack:"encoding"`
	Fallback   bool   `msgpack:"encoding_fallback,omitempty"`
	Rows       int    `msgpack:"rows"`
	Registered int    `msgpack:"registered"`
	Replaced   int    `msgpack:"replaced"`
	Skipped    int    `msgpack:"skipped"`
	Malformed  int    `msgpack:"malformed"`
	Error      string `msgpack:"error,omitempty"`
}

// ReloadResponse reports a dictionary rebuild.
type ReloadResponse struct {
	ID        string         `msgpack:"id"`
	Status    string         `msgpack:"status"`
	Entries   int            `msgpack:"entries"`
	Sources   []SourceStatus `msgpack:"sources"`
	Missing   []string       `msgpack:"missing,omitempty"`
	TimeTaken int64          `msgpack:"t"` // milliseconds
}

// StatsResponse describes the published dictionary.
type StatsResponse struct {
	ID            string   `msgpack:"id"`
	Entries       int      `msgpack:"entries"`
	Sources       int      `msgpack:"sources"`
	FailedSources int      `msgpack:"failed_sources"`
	Replaced      int      `msgpack:"replaced"`
	Loads         int      `msgpack:"loads"`
	LastLoad      int64    `msgpack:"last_load"` // unix seconds, 0 before the first load
	Requests      int      `msgpack:"requests"`
	Formats       []string `msgpack:"formats"` // source formats this build reads
}

// DiagnosticsResponse returns recent diagnostic lines, oldest first.
type DiagnosticsResponse struct {
	ID    string   `msgpack:"id"`
	Lines []string `msgpack:"lines"`
	Count int      `msgpack:"c"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
