package controller

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	m "deobf.dev/pkg/deobf/internal/model"
)

// renderMappingTable lists every mapping of tables, class entries first.
func renderMappingTable(tables *m.Tables) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Kind", "Scope", "Original", "Replacement"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	rows := 0

	for _, e := range tables.Classes.Entries() {
		table.Append([]string{string(m.KindClass), "*", e.Original, e.Replacement})
		rows++
	}

	for _, e := range tables.Fields.Entries() {
		table.Append([]string{string(m.KindField), string(e.File), e.Original, e.Replacement})
		rows++
	}

	for _, e := range tables.Methods.Entries() {
		table.Append([]string{string(m.KindMethod), string(e.File), e.Original, e.Replacement})
		rows++
	}

	table.SetFooter([]string{"", "", "Total", fmt.Sprintf("%d", rows)})
	table.Render()

	return buf.String()
}

// renderResultTable summarises a run: one row per kind plus the file counts.
func renderResultTable(result m.Result) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Root", "Classes", "Fields", "Methods", "Files scanned", "Files modified"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	table.Append([]string{
		string(result.Root),
		fmt.Sprintf("%d", result.Classes),
		fmt.Sprintf("%d", result.Fields),
		fmt.Sprintf("%d", result.Methods),
		fmt.Sprintf("%d", result.FilesScanned),
		fmt.Sprintf("%d", result.FilesModified),
	})
	table.Render()

	return buf.String()
}

// renderChanges lists the changed files, followed by their diffs when present.
func renderChanges(changes ChangeSource) (string, error) {
	if changes == nil || changes.Len() == 0 {
		return "", nil
	}

	var (
		list  bytes.Buffer
		diffs bytes.Buffer
	)

	err := changes.Range(func(_ uint64, change m.FileChange) error {
		fmt.Fprintf(&list, "  %s (%d lines)\n", change.File, change.Lines)

		if change.Diff != "" {
			diffs.WriteString(change.Diff)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read change records: %w", err)
	}

	if diffs.Len() > 0 {
		list.WriteString("\n")
		list.Write(diffs.Bytes())
	}

	return list.String(), nil
}
