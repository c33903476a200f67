// Audit configuration re-exports.
//
// DESIGN: Audit config is defined in internal/store.
// This file re-exports it for use by the main Config struct.
package config

import (
	"fmt"

	"github.com/compresr/edu-ai-gateway/internal/store"
)

// AuditConfig is an alias for store.Config for use in main Config struct.
type AuditConfig = store.Config

// validateAudit checks the audit store selection.
func validateAudit(a AuditConfig) error {
	switch a.Type {
	case "", "memory", "none":
		return nil
	case "sqlite":
		if a.Path == "" {
			return fmt.Errorf("audit.path is required for sqlite")
		}
		return nil
	default:
		return fmt.Errorf("invalid audit.type %q (must be memory, sqlite or none)", a.Type)
	}
}
