package config

const (
	// FileName is the project configuration file; its directory is the project root
	FileName = ".warmtest.yml"
	// DefaultTestPath is the default directory scanned for suite files
	DefaultTestPath = "test"
	// DefaultHelper is the default helper source file, relative to the test path
	DefaultHelper = "test_helper.yml"
	// DefaultSocketDir is the socket directory, relative to the project root
	DefaultSocketDir = "tmp/sockets"
	// DefaultSocketName is the socket file name
	DefaultSocketName = "test_server.sock"
	// DefaultStateName is the daemon state file name, stored next to the socket
	DefaultStateName = "test_server.json"
	// DefaultLogLevel is the daemon log level
	DefaultLogLevel = "info"
	// DefaultDatabaseName is used when neither the config nor DB_DATABASE names one
	DefaultDatabaseName = "warmtest_test"
	// SocketEnv overrides the socket path
	SocketEnv = "WARMTEST_SOCKET"
)

// DefaultBaseCategories are the abstract categories whose test suites are reclaimed between runs
var DefaultBaseCategories = []string{
	"warm.TestCase",
	"warm.IntegrationTest",
}

// DefaultEnvFiles are loaded into the warm environment when present
var DefaultEnvFiles = []string{
	".env",
	".env.test",
}

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"tmp",
	"log",
}
