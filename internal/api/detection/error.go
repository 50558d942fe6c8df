package detection

import (
	"PlateDetector/pkg/response"
	"net/http"
)

var (
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrBadRequest          = response.NewError(http.StatusBadRequest, "bad request")
	ErrInvalidImage        = response.NewError(http.StatusBadRequest, "frame is not a decodable JPEG or PNG image")
	ErrFrameTooLarge       = response.NewError(http.StatusRequestEntityTooLarge, "frame exceeds the maximum camera size")
	ErrNoFrame             = response.NewError(http.StatusNotFound, "no frame has been processed yet")
	ErrNoCropImage         = response.NewError(http.StatusNotFound, "no plate image is displayed")
)
