// Package mdns provides mDNS/Zeroconf advertisement so companion apps
// on the same network can find the Matinee server without manual
// configuration.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/hashicorp/mdns"

	"github.com/matineeapp/matinee-server/internal/service"
	"github.com/matineeapp/matinee-server/internal/store"
)

const (
	// ServiceType is the mDNS service type for Matinee servers.
	ServiceType = "_matinee._tcp"

	// APIVersion is the API version advertised in TXT records.
	APIVersion = "v1"
)

// Service manages mDNS advertisement for the server.
type Service struct {
	server *mdns.Server
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// Start begins advertising the server. Call it after the HTTP server
// is listening. Errors are typically non-fatal: multicast is often
// unavailable in containers, and the server works fine without
// discovery.
func (s *Service) Start(instance *store.Instance, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop an existing advertisement first (restart scenarios).
	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
	}

	host, err := os.Hostname()
	if err != nil {
		host = "matinee-server"
	}

	txtRecords := []string{
		fmt.Sprintf("id=%s", instance.ID),
		fmt.Sprintf("name=%s", instance.Name),
		fmt.Sprintf("version=%s", service.Version),
		fmt.Sprintf("api=%s", APIVersion),
	}

	zone, err := mdns.NewMDNSService(
		host,        // Instance name (hostname)
		ServiceType, // Service type (_matinee._tcp)
		"",          // Domain (empty = .local)
		"",          // Host (empty = use system hostname)
		port,        // Port
		nil,         // IPs (nil = all interfaces)
		txtRecords,  // TXT records
	)
	if err != nil {
		return fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{
		Zone: zone,
	})
	if err != nil {
		return fmt.Errorf("start mDNS server: %w", err)
	}

	s.server = server

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", instance.Name,
		"id", instance.ID,
	)

	return nil
}

// Stop stops advertising. Safe to call multiple times or before Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}
