// Package protocol holds the names and codes shared by the daemon and its clients.
package protocol

const (
	// ServiceName is the JSON-RPC namespace of the daemon
	ServiceName = "warm"
	// MethodRun runs a suite file: warm_run(file string, args []string) string
	MethodRun = ServiceName + "_run"
)

// JSON-RPC error codes returned by MethodRun
const (
	// CodeInvalidArgument marks a request the daemon refuses to run
	CodeInvalidArgument = -32602
	// CodeRunFailed marks a run that failed inside the daemon
	CodeRunFailed = -32000
)

// MethodStatus describes the daemon: warm_status() DaemonInfo
const MethodStatus = ServiceName + "_status"
