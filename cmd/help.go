package cmd

// helpText is the static content of the help view.
func helpText() string {
	return ` [yellow]Views[-]
   t        table view
   s        summary view (per-column statistics)
   ?        this help

 [yellow]Navigation[-]
   j / k    next / previous page (table view)
   h / l    scroll columns left / right (table view)
   g / G    jump to first / last page (table view)
            the summary and help views scroll with the same keys
            or the arrow keys

 [yellow]Filtering[-]
   /        open the filter prompt, Enter applies, Esc keeps the current filter
            empty text clears the filter

            expressions compare columns against literals:
              id > 90
              name == "Anna" & salary.notna()
              score >= score.mean() | score.isna()

            anything else is a case-sensitive substring search over all cells

 [yellow]Other[-]
   c        copy the visible page to the clipboard (tab-separated)
   q        quit`
}
