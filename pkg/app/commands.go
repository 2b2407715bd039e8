package app

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteRouteList prints the named routes as a table.
func (a *Application) WriteRouteList(w io.Writer) error {
	routes, err := a.RouteList()
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		_, err := fmt.Fprintln(w, "No named routes registered.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	fmt.Fprintln(tw, "------\t----\t----")
	for _, ri := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return tw.Flush()
}
