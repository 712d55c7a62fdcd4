package main

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"image-bridge/internal/imagegen"
)

func listModels(w io.Writer, args []string) error {
	var prefix string
	if len(args) > 0 {
		prefix = args[0]
	}

	var data [][]string
	for _, m := range imagegen.KnownModels {
		if !strings.HasPrefix(strings.ToLower(m.ID), strings.ToLower(prefix)) {
			continue
		}
		data = append(data, []string{m.ID, m.Provider.String(), imagegen.Route(m.ID).String()})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "OWNER", "ROUTED TO"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
