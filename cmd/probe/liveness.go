package probe

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github/smartkit/relay/internal/config"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks the /-/healthy management endpoint",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runProbe("healthy", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Print the probe response body")

	return cmd
}

// runProbe hits a management endpoint on the locally running server and exits
// non-zero unless it answers 200.
func runProbe(endpoint string, verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	client := &http.Client{Timeout: 5 * time.Second}

	res, err := client.Get(fmt.Sprintf("http://localhost%s/-/%s", cfg.Echo.ListenAddress, endpoint))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Probe failed: %v\n", err)
		os.Exit(1)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if verbose {
		fmt.Println(string(body))
	}

	if res.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Probe returned status %d\n", res.StatusCode)
		os.Exit(1)
	}
}
