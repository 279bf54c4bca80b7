package query

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"catalogbench/internal/app"
	"catalogbench/internal/models"
)

const (
	fieldFlag  = "field"
	sourceFlag = "source"

	sourceIndex = "index"
	sourceSQL   = "sql"
)

// newSearchFlags returns fresh flag values for one search command. Each
// command needs its own, since a flag binds to the first command it is read
// from.
func newSearchFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		fieldFlag: &cobraflags.StringFlag{
			Name:  fieldFlag,
			Value: string(models.SearchFieldAny),
			Usage: "Field to match (any, code, title, barcode)",
		},
		sourceFlag: &cobraflags.StringFlag{
			Name:  sourceFlag,
			Value: sourceIndex,
			Usage: "Where to evaluate the query: index (in-memory n-gram index) or sql (database scan)",
		},
	}
}

// NewSearchCommand creates the search command.
func NewSearchCommand(v *viper.Viper) *cobra.Command {
	flags := newSearchFlags()
	searchCmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Run a timed substring search against the catalog",
		Long: `Run a single case-sensitive substring search against the persisted catalog
and print the matching products in insertion order.

Examples:
  catalogbench search Hammer --field title
  catalogbench search ELEC-0004 --field code --source sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return searchCommand(cmd, v, flags, args[0])
		},
	}

	cobraflags.RegisterMap(searchCmd, flags)
	return searchCmd
}

// NewScanCommand creates the scan command.
func NewScanCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <barcode>",
		Short: "Look up a product by its exact barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scanCommand(cmd, v, args[0])
		},
	}
}

func searchCommand(cmd *cobra.Command, v *viper.Viper, flags map[string]cobraflags.Flag, pattern string) error {
	field, err := models.ParseSearchField(flags[fieldFlag].GetString())
	if err != nil {
		return err
	}
	source := flags[sourceFlag].GetString()
	if source != sourceIndex && source != sourceSQL {
		return fmt.Errorf("unknown source %q, expected %s or %s", source, sourceIndex, sourceSQL)
	}

	cfg, err := app.LoadConfig(v)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		products []models.Product
		elapsed  time.Duration
	)
	if source == sourceSQL {
		start := time.Now()
		products, err = a.Repo.SearchSQL(cmd.Context(), field, pattern, cfg.SearchLimit)
		elapsed = time.Since(start)
	} else {
		r, searchErr := a.Coordinator.SearchNow(cmd.Context(), field, pattern)
		products, err = r.Products, searchErr
		elapsed = time.Duration(r.ElapsedMs) * time.Millisecond
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	writeProducts(out, products)
	fmt.Fprintf(out, "\n%d products matched %q on %s via %s in %d ms\n", len(products), pattern, field, source, elapsed.Milliseconds())
	return nil
}

func scanCommand(cmd *cobra.Command, v *viper.Viper, barcode string) error {
	cfg, err := app.LoadConfig(v)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.Coordinator.ScanBarcode(cmd.Context(), barcode)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if r.Product == nil {
		fmt.Fprintf(out, "no product with barcode %s (%d ms)\n", barcode, r.ElapsedMs)
		return nil
	}
	writeProducts(out, []models.Product{*r.Product})
	fmt.Fprintf(out, "\nfound in %d ms\n", r.ElapsedMs)
	return nil
}

func writeProducts(out io.Writer, products []models.Product) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tBARCODE\tSTOCK\tACTIVE\tSUPPLIER\tTITLE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%t\t%s\t%s\n", p.ID, p.Code, p.Barcode, p.Stock, p.IsActive, p.Supplier, p.Title)
	}
	w.Flush()
}
