package diag

// Reporter: минимальный контракт получения совпадений от фаз проверки.
type Reporter interface {
	Report(m RuleMatch)
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(m RuleMatch) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(m)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(m RuleMatch)

func (f ReporterFunc) Report(m RuleMatch) { f(m) }
