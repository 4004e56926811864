package permrun

// Reporter drives the read-only summary and listing modes. Reports apply
// selection but never a window: skip/count/every only affects execution, so
// every mode here exposes selected/admitted counts computed without creating
// a single fixture.
type Reporter struct {
	Suites []*Suite

	// Context is the resolution context reports resolve through. A fresh
	// one is used when nil.
	Context *Context

	// Catalog defaults to DefaultGeometries when nil.
	Catalog []Geometry

	Selection Selection
	Overrides []Override
}

// SummaryReport aggregates counts over every selected suite.
type SummaryReport struct {
	Suites   int
	Cases    int
	Types    TypeMask
	Selected int
	Admitted int
}

// SuiteReport carries per-suite counts for listing.
type SuiteReport struct {
	ID       string
	Types    TypeMask
	Cases    int
	Selected int
	Admitted int
}

// CaseReport carries per-case counts for listing.
type CaseReport struct {
	ID       string
	Types    TypeMask
	Selected int
	Admitted int
}

// PathReport pairs a case with the source path it was generated from.
type PathReport struct {
	CaseID string
	Path   string
}

// DefineValue is one resolved name=value pair.
type DefineValue struct {
	Name  string
	Value Value
}

// DefineListing reports the resolved suite-local defines for one selected
// permutation.
type DefineListing struct {
	CaseID   string
	Index    int
	Geometry string
	Defines  []DefineValue
}

// GeometryReport lists the predefines one catalog geometry supplies,
// resolved through the full layer stack so overrides show through.
type GeometryReport struct {
	Name    string
	Defines []DefineValue
}

func (r *Reporter) enumerator() *Enumerator {
	ctx := r.Context
	if ctx == nil {
		ctx = NewContext()
	}
	catalog := r.Catalog
	if catalog == nil {
		catalog = DefaultGeometries()
	}
	ctx.SetOverrides(r.Overrides)
	return &Enumerator{Context: ctx, Catalog: catalog, Selection: r.Selection}
}

// Summary aggregates counts across all selected suites. The case total
// counts every case of a selected suite, mirroring how suite listings report
// their sizes.
func (r *Reporter) Summary() (SummaryReport, error) {
	enum := r.enumerator()
	report := SummaryReport{}
	for _, suite := range r.Suites {
		if !r.Selection.MatchSuite(suite) {
			continue
		}
		enum.Context.SetSuite(suite)
		report.Suites++
		report.Cases += len(suite.Cases)
		report.Types |= suite.Types

		for _, kase := range suite.Cases {
			if !r.Selection.MatchCase(kase) {
				continue
			}
			enum.Context.SetCase(kase)
			selected, admitted, err := enum.CountCase(kase)
			if err != nil {
				return SummaryReport{}, err
			}
			report.Selected += selected
			report.Admitted += admitted
		}
	}
	return report, nil
}

// ListSuites reports each selected suite with its permutation counts.
func (r *Reporter) ListSuites() ([]SuiteReport, error) {
	enum := r.enumerator()
	var reports []SuiteReport
	for _, suite := range r.Suites {
		if !r.Selection.MatchSuite(suite) {
			continue
		}
		enum.Context.SetSuite(suite)
		report := SuiteReport{
			ID:    suite.ID,
			Types: suite.Types,
			Cases: len(suite.Cases),
		}
		for _, kase := range suite.Cases {
			if !r.Selection.MatchCase(kase) {
				continue
			}
			enum.Context.SetCase(kase)
			selected, admitted, err := enum.CountCase(kase)
			if err != nil {
				return nil, err
			}
			report.Selected += selected
			report.Admitted += admitted
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ListCases reports each selected case with its permutation counts.
func (r *Reporter) ListCases() ([]CaseReport, error) {
	enum := r.enumerator()
	var reports []CaseReport
	for _, suite := range r.Suites {
		if !r.Selection.MatchSuite(suite) {
			continue
		}
		enum.Context.SetSuite(suite)
		for _, kase := range suite.Cases {
			if !r.Selection.MatchCase(kase) {
				continue
			}
			enum.Context.SetCase(kase)
			selected, admitted, err := enum.CountCase(kase)
			if err != nil {
				return nil, err
			}
			reports = append(reports, CaseReport{
				ID:       kase.ID,
				Types:    kase.Types,
				Selected: selected,
				Admitted: admitted,
			})
		}
	}
	return reports, nil
}

// ListPaths reports the source path behind each selected case.
func (r *Reporter) ListPaths() []PathReport {
	var reports []PathReport
	for _, suite := range r.Suites {
		if !r.Selection.MatchSuite(suite) {
			continue
		}
		for _, kase := range suite.Cases {
			if !r.Selection.MatchCase(kase) {
				continue
			}
			reports = append(reports, PathReport{CaseID: kase.ID, Path: kase.Path})
		}
	}
	return reports
}

// ListDefines resolves the suite-local defines of every selected
// permutation. Only keys the case actually maps appear; weaker-layer-only
// keys are omitted, matching what the permutation itself contributes.
func (r *Reporter) ListDefines() ([]DefineListing, error) {
	enum := r.enumerator()
	var listings []DefineListing
	for _, suite := range r.Suites {
		if !r.Selection.MatchSuite(suite) {
			continue
		}
		enum.Context.SetSuite(suite)
		for _, kase := range suite.Cases {
			if !r.Selection.MatchCase(kase) {
				continue
			}
			enum.Context.SetCase(kase)
			err := enum.VisitSelected(kase, func(index int) error {
				_, geometry := enum.install(kase, index)
				listing := DefineListing{
					CaseID:   kase.ID,
					Index:    index,
					Geometry: enum.Catalog[geometry].Name,
				}
				for key := range suite.DefineNames {
					if key >= len(kase.DefineMap) || !kase.DefineMap[key].Valid {
						continue
					}
					value, err := enum.Context.Define(DefineKey(key))
					if err != nil {
						return err
					}
					listing.Defines = append(listing.Defines, DefineValue{
						Name:  suite.DefineNames[key],
						Value: value,
					})
				}
				listings = append(listings, listing)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return listings, nil
}

// ListGeometries reports the predefines each catalog geometry supplies,
// honoring the geometry-name filter.
func (r *Reporter) ListGeometries() ([]GeometryReport, error) {
	enum := r.enumerator()
	var reports []GeometryReport
	for _, geometry := range enum.Catalog {
		if r.Selection.Geometry != "" && geometry.Name != r.Selection.Geometry {
			continue
		}
		enum.Context.SetGeometry(geometry)
		report := GeometryReport{Name: geometry.Name}
		for _, define := range geometry.Defines {
			value, err := enum.Context.Predefine(define.Key)
			if err != nil {
				return nil, err
			}
			report.Defines = append(report.Defines, DefineValue{
				Name:  define.Key.String(),
				Value: value,
			})
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ListDefaults resolves every predefine with only the Default and Override
// layers active, showing the values a run starts from.
func (r *Reporter) ListDefaults() ([]DefineValue, error) {
	enum := r.enumerator()
	defaults := make([]DefineValue, 0, predefineCount)
	for key := PredefineKey(0); key < predefineCount; key++ {
		value, err := enum.Context.Predefine(key)
		if err != nil {
			return nil, err
		}
		defaults = append(defaults, DefineValue{Name: key.String(), Value: value})
	}
	return defaults, nil
}
