package browse

// Pager tracks the sentinel observer: the last rendered item whose
// visibility triggers the next incremental fetch.
type Pager struct {
	sentinel string
	attached bool

	attaches int
	detaches int
}

// Sync re-evaluates the observer after a render. The previous observer is
// always detached before a new one is attached. Nothing is attached while a
// fetch is in flight or when no more results exist.
func (p *Pager) Sync(lastItemID string, loading, hasMore bool) {
	want := lastItemID != "" && !loading && hasMore
	if p.attached && (!want || p.sentinel != lastItemID) {
		p.Detach()
	}
	if want && !p.attached {
		p.sentinel = lastItemID
		p.attached = true
		p.attaches++
	}
}

// Detach disconnects the current observer, if any.
func (p *Pager) Detach() {
	if !p.attached {
		return
	}
	p.attached = false
	p.sentinel = ""
	p.detaches++
}

// Sentinel returns the observed item id.
func (p *Pager) Sentinel() (string, bool) {
	return p.sentinel, p.attached
}

// Fire reports whether itemID is the observed sentinel. A firing observer
// detaches so one visibility event yields at most one trigger.
func (p *Pager) Fire(itemID string) bool {
	if !p.attached || (itemID != "" && itemID != p.sentinel) {
		return false
	}
	p.Detach()
	return true
}

func (p *Pager) Attaches() int { return p.attaches }
func (p *Pager) Detaches() int { return p.detaches }
