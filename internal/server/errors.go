package server

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/GoSim-25-26J-441/labplan/internal/device"
	"github.com/GoSim-25-26J-441/labplan/internal/protocol"
	"github.com/GoSim-25-26J-441/labplan/internal/robot"
	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/models"
)

// errorClass is how a tool error is reported on each transport
type errorClass struct {
	kind     string
	httpCode int
	grpcCode codes.Code
}

func classify(err error) errorClass {
	var (
		parseErr      *models.ParseError
		rangeErr      *models.RangeError
		invalidErr    *protocol.InvalidParametersError
		slotErr       *device.SlotError
		wavelengthErr *device.WavelengthError
		statusErr     *robot.StatusError
	)
	switch {
	case errors.As(err, &parseErr):
		return errorClass{"parse_error", http.StatusBadRequest, codes.InvalidArgument}
	case errors.As(err, &rangeErr), errors.As(err, &invalidErr):
		return errorClass{"range_error", http.StatusUnprocessableEntity, codes.OutOfRange}
	case errors.Is(err, tools.ErrUnknownTool):
		return errorClass{"unknown_tool", http.StatusNotFound, codes.NotFound}
	case errors.Is(err, robot.ErrNotConfigured), errors.Is(err, device.ErrNotConfigured):
		return errorClass{"not_configured", http.StatusServiceUnavailable, codes.FailedPrecondition}
	case errors.Is(err, device.ErrNotConnected), errors.As(err, &slotErr), errors.As(err, &wavelengthErr):
		return errorClass{"precondition", http.StatusConflict, codes.FailedPrecondition}
	case errors.Is(err, robot.ErrCircuitOpen):
		return errorClass{"unavailable", http.StatusServiceUnavailable, codes.Unavailable}
	case errors.Is(err, device.ErrDeviceBusy):
		return errorClass{"busy", http.StatusConflict, codes.Unavailable}
	case errors.Is(err, context.DeadlineExceeded):
		return errorClass{"timeout", http.StatusGatewayTimeout, codes.DeadlineExceeded}
	case errors.Is(err, context.Canceled):
		return errorClass{"cancelled", 499, codes.Canceled}
	case errors.As(err, &statusErr), errors.Is(err, device.ErrNoDevices):
		return errorClass{"device_error", http.StatusBadGateway, codes.Unavailable}
	default:
		return errorClass{"internal", http.StatusInternalServerError, codes.Internal}
	}
}
