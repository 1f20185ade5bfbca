package tasks

import (
	"fmt"

	"github.com/desertthunder/reminis/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveAddress Phase = iota
	FetchWeather
	StorePhoto
	CopyImages
	WriteDocument
	ImportPhotos
)

func (p Phase) String() string {
	switch p {
	case ResolveAddress:
		return "resolve_address"
	case FetchWeather:
		return "fetch_weather"
	case StorePhoto:
		return "store_photo"
	case CopyImages:
		return "copy_images"
	case WriteDocument:
		return "write_document"
	case ImportPhotos:
		return "import_photos"
	default:
		return ""
	}
}

func resolveAddressUpdate(coords models.Coordinates) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAddress,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving address at %s...", coords),
	}
}

func fetchWeatherUpdate(coords models.Coordinates) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWeather,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching weather at %s...", coords),
	}
}

func storePhotoUpdate(p *models.Photo) ProgressUpdate {
	if p == nil {
		return ProgressUpdate{
			Phase:   StorePhoto,
			Step:    0,
			Total:   1,
			Message: "Saving photo...",
		}
	}
	return ProgressUpdate{
		Phase:   StorePhoto,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Photo saved: %s", p.ID),
		Data:    p,
	}
}

func copyingImagesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopyImages,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d photos...", total),
	}
}

func copyCompletedUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopyImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, id),
	}
}

func copyFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CopyImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}

func writeDocumentUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteDocument,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %s...", path),
	}
}

func importUpdate(step, total int, name string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   ImportPhotos,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
		}
	}
	return ProgressUpdate{
		Phase:   ImportPhotos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}
