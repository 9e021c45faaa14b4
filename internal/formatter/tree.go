package formatter

import (
	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/crmx/internal/view"
)

// RenderTree renders one branch per record, labelled by its identifier, with
// one "Label: value" leaf per visible field. Missing values are skipped.
func RenderTree(res view.Result, title string) string {
	tree := treeprint.New()
	if title != "" {
		tree.SetValue(title)
	}
	for _, row := range res.Rows {
		branch := tree.AddBranch("#" + row.Record.ID())
		for i, col := range res.Headers {
			if i >= len(row.Cells) || row.Cells[i] == nil {
				continue
			}
			branch.AddNode(col.Title() + ": " + FormatCell(col, row.Cells[i]))
		}
	}
	return tree.String()
}
