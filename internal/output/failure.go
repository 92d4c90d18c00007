package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmagro/sidecar-payouts/internal/payouts"
	"github.com/dmagro/sidecar-payouts/internal/sidecar"
)

// RenderFailure prints the diagnostic for a failed stage. Errors of unknown
// kind are printed as-is.
func RenderFailure(w io.Writer, err error) {
	var reqErr *sidecar.RequestError
	errors.As(err, &reqErr)

	switch {
	case errors.Is(err, sidecar.ErrNoChainAttached):
		fmt.Fprintf(w, "%s The sidecar is up but not attached to any chain.\n", red("✗"))
	case errors.Is(err, sidecar.ErrUnreachable):
		fmt.Fprintf(w, "%s Unable to connect to the sidecar API. Please recheck your instance: %s%s\n",
			red("✗"), requestURL(reqErr), status(reqErr))
	case errors.Is(err, sidecar.ErrMalformedResponse):
		fmt.Fprintf(w, "%s The sidecar returned an unexpected node/version response: %s\n", red("✗"), requestURL(reqErr))
	case errors.Is(err, sidecar.ErrQueryFailed):
		fmt.Fprintf(w, "%s Unable to query staking info. Please recheck the instance: %s%s\n",
			red("✗"), requestURL(reqErr), status(reqErr))
	case errors.Is(err, payouts.ErrInvalidResponseShape):
		fmt.Fprintf(w, "%s Invalid response from API: %v\n", red("✗"), err)
	default:
		fmt.Fprintf(w, "%s %v\n", red("✗"), err)
	}
}

func requestURL(e *sidecar.RequestError) string {
	if e == nil {
		return "(unknown URL)"
	}
	return e.URL
}

func status(e *sidecar.RequestError) string {
	switch {
	case e == nil:
		return ""
	case e.StatusCode != 0:
		return fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf(" (%v)", e.Err)
	default:
		return ""
	}
}
