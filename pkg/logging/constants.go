// Package logging provides standardized logging utilities for vaultsync/core.
// This file defines constants used throughout the logging package.
package logging

// Standard field names for logging
const (
	FieldMethod     = "method"      // Method or function name
	FieldOperation  = "operation"   // Higher-level operation
	FieldComponent  = "component"   // Component or module
	FieldDuration   = "duration_ms" // Duration of operation in milliseconds
	FieldError      = "error"       // Error message
	FieldPath       = "path"        // File or resource path
	FieldID         = "id"          // Identifier
	FieldUser       = "user"        // User identifier
	FieldStatus     = "status"      // Status code or string
	FieldSize       = "size"        // Size in bytes
	FieldRequestID  = "request_id"  // Request identifier
	FieldCount      = "count"       // Count of items
	FieldRetries    = "retries"     // Number of retries
	FieldStatusCode = "status_code" // HTTP status code
	FieldURL        = "url"         // URL
	FieldEndpoint   = "endpoint"    // Server-relative endpoint path
	FieldUUID       = "uuid"        // Item or chunk UUID
)
