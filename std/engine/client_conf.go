package engine

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// EnvClientTransport overrides the transport of every client.conf.
const EnvClientTransport = "NDN_CLIENT_TRANSPORT"

type ClientConfig struct {
	TransportUri string
}

// DefaultClientConfig points at the local forwarder socket.
func DefaultClientConfig() ClientConfig {
	transportUri := "unix:///run/nfd/nfd.sock"
	if runtime.GOOS == "darwin" {
		transportUri = "unix:///var/run/nfd/nfd.sock"
	}
	return ClientConfig{TransportUri: transportUri}
}

// ReadClientConf applies the key=value lines of a client.conf to config.
// Lines starting with ';' are comments.
func (config *ClientConfig) ReadClientConf(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "transport" {
			config.TransportUri = strings.TrimSpace(value)
		}
	}
	return scanner.Err()
}

// GetClientConfig reads client.conf from the system and user directories,
// in order of increasing priority, then applies NDN_CLIENT_TRANSPORT.
func GetClientConfig() ClientConfig {
	config := DefaultClientConfig()

	configDirs := []string{
		"/etc/ndn",
		"/usr/local/etc/ndn",
		filepath.Join(os.Getenv("HOME"), ".ndn"),
	}
	for _, dir := range configDirs {
		file, err := os.Open(filepath.Join(dir, "client.conf"))
		if err != nil {
			continue
		}
		config.ReadClientConf(file)
		file.Close()
	}

	if transportEnv := os.Getenv(EnvClientTransport); transportEnv != "" {
		config.TransportUri = transportEnv
	}
	return config
}
