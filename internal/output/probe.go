package output

import (
	"fmt"
	"io"

	"github.com/dmagro/sidecar-payouts/internal/sidecar"
)

// ProbeResult is what the probe command reports.
type ProbeResult struct {
	URL     string               `json:"url"`
	Version *sidecar.NodeVersion `json:"version"`
}

func RenderProbeTerminal(w io.Writer, res ProbeResult) {
	fmt.Fprintf(w, "%s Sidecar reachable at %s\n", green("✓"), res.URL)
	fmt.Fprintf(w, "  %-8s %s\n", "Chain:", cyan(res.Version.Chain))
	fmt.Fprintf(w, "  %-8s %s %s\n", "Client:", res.Version.ClientImplName, res.Version.ClientVersion)
}
