package academy

// Envelope wraps every API response. A false Success always carries a human readable Error.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Page is the paged list shape some endpoints use for Data instead of a bare array.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total,omitempty"`
}

func OK[T any](data T) Envelope[T] { return Envelope[T]{Success: true, Data: data} }

func Fail(msg string) Envelope[any] { return Envelope[any]{Error: msg} }

type (
	LoginResult struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
		User      User   `json:"user"`
	}

	GradeBulkResult struct {
		GradedCount int `json:"graded_count"`
	}

	RevokeCertificate struct {
		CertificateID ID `json:"certificate_id" validate:"required"`
	}
)
