// Package match turns the composed cell forest of each page into structured
// document data.
//
// A Matcher groups a page's top-level cells into rows and walks them with a
// small state machine (awaiting a section, in a section, in an element).
// What each row is, and which fields it fills, is decided by a Policy: the
// generic palette-driven Base, or a template policy such as Preventive or MV
// built on it. Pages are matched atomically; a page that does not fit the
// template returns a *FormatMismatch and leaves the result untouched.
//
// Basic usage:
//
//	policy, err := match.NewPolicy(match.PreventiveName, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := match.NewMatcher(policy)
//	for _, page := range pages {
//	    params := policy.Settings().ParamsFor(page)
//	    forest := layout.ComposePage(page, layout.Options{Params: params})
//	    if err := m.MatchPage(page.Number, params, forest); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	table := policy.Flatten(m.Result())
package match
