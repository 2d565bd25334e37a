package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/repometrics/internal/contract"
)

// LogCollectHeader prints a concise, 2-line header for a collection run.
func LogCollectHeader(w io.Writer, cfg *contract.Config) {
	// Line 1: The search being paged (query and ordering)
	_, _ = fmt.Fprintf(w, "🔎 Query: %s (sort: %s %s)\n", cfg.Query.Predicate, cfg.Query.Sort, cfg.Query.Order)

	// Line 2: The population target and the API serving it
	_, _ = fmt.Fprintf(w, "📦 Population: %d repositories from %s\n", cfg.Population, cfg.APIURL)
}

// LogAnalyzeHeader prints the collection header plus the analysis parameters.
func LogAnalyzeHeader(w io.Writer, cfg *contract.Config, seed uint64) {
	LogCollectHeader(w, cfg)
	subset := "all"
	if cfg.Subset > 0 {
		subset = strconv.Itoa(cfg.Subset)
	}
	_, _ = fmt.Fprintf(w, "🧪 Subset: %s (seed: %d, %d process x %d quality metrics)\n",
		subset, seed, len(cfg.ProcessMetrics), len(cfg.QualityMetrics))
}
