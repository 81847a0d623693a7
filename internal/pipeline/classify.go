package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zbxtools/zbxreport/internal/xlsx"
	"github.com/zbxtools/zbxreport/internal/zabbix"
)

// FailureKind classifies a terminal pipeline error for the caller.
type FailureKind int

const (
	FailureUnexpected FailureKind = iota
	FailureAuth
	FailureAPI
	FailureConnection
	FailureFilesystem
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuth:
		return "auth"
	case FailureAPI:
		return "api"
	case FailureConnection:
		return "connection"
	case FailureFilesystem:
		return "filesystem"
	default:
		return "unexpected"
	}
}

// Failure is the user-facing terminal outcome of a failed run.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Classify maps a pipeline error to its user-facing failure. Authentication
// problems are recognized by sniffing the server's message text, since the
// API reports them as ordinary application errors.
func Classify(err error) Failure {
	var apiErr *zabbix.APIError
	if errors.As(err, &apiErr) {
		if strings.Contains(apiErr.Message, "Session terminated") ||
			strings.Contains(apiErr.Message, "Not authorised") {
			return Failure{
				Kind:    FailureAuth,
				Message: "Authentication Error: The API Token is invalid or has expired. Please check the token and try again.",
			}
		}
		return Failure{
			Kind:    FailureAPI,
			Message: fmt.Sprintf("Zabbix API Error: %s", apiErr.Error()),
		}
	}

	if errors.Is(err, zabbix.ErrTransport) {
		return Failure{
			Kind:    FailureConnection,
			Message: fmt.Sprintf("Connection error while calling Zabbix API: %v", err),
		}
	}

	if errors.Is(err, xlsx.ErrFilesystem) {
		return Failure{
			Kind:    FailureFilesystem,
			Message: fmt.Sprintf("Could not create or access the output directory:\n%v", err),
		}
	}

	return Failure{
		Kind:    FailureUnexpected,
		Message: fmt.Sprintf("An unexpected error occurred. Please check the logs for details. Error: %v", err),
	}
}
