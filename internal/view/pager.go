package view

// PageSize is the number of records shown per page in every view.
const PageSize = 10

// PageState is what a presentation layer needs to draw a pager.
type PageState struct {
	Index       int  `json:"index"`
	Size        int  `json:"size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Pager is a saturating page cursor over a counted collection. The zero value
// is a pager of PageSize over nothing, positioned on page 1.
type Pager struct {
	index int
	size  int
	total int
}

func NewPager(size int) Pager {
	if size <= 0 {
		size = PageSize
	}
	return Pager{index: 1, size: size}
}

// Reset repositions the pager on page 1 of a collection of total items.
func (p *Pager) Reset(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.index = 1
}

func (p Pager) Size() int {
	if p.size <= 0 {
		return PageSize
	}
	return p.size
}

func (p Pager) Index() int {
	if p.index < 1 {
		return 1
	}
	return p.index
}

func (p Pager) Total() int { return p.total }

// TotalPages is max(1, ceil(total/size)).
func (p Pager) TotalPages() int {
	size := p.Size()
	pages := (p.total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

func (p Pager) HasNext() bool     { return p.Index() < p.TotalPages() }
func (p Pager) HasPrevious() bool { return p.Index() > 1 }

// Next advances one page. It is a no-op on the last page and reports whether
// the index moved.
func (p *Pager) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.index = p.Index() + 1
	return true
}

// Previous steps back one page. It is a no-op on the first page.
func (p *Pager) Previous() bool {
	if !p.HasPrevious() {
		return false
	}
	p.index = p.Index() - 1
	return true
}

// Bounds returns the slice bounds of the current page over n locally
// available items. The bounds are clamped to n, so a page past the end of the
// local rows is empty.
func (p Pager) Bounds(n int) (lo, hi int) {
	lo = (p.Index() - 1) * p.Size()
	hi = lo + p.Size()
	if lo > n {
		lo = n
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

func (p Pager) State() PageState {
	return PageState{
		Index:       p.Index(),
		Size:        p.Size(),
		TotalPages:  p.TotalPages(),
		TotalItems:  p.total,
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
	}
}

// Paged is a collection with its own page cursor. Range views hold one per
// sub-list so each pages independently.
type Paged[T any] struct {
	items []T
	pager Pager
}

func NewPaged[T any](size int) *Paged[T] {
	return &Paged[T]{pager: NewPager(size)}
}

// Reset replaces the items and returns to page 1.
func (p *Paged[T]) Reset(items []T) {
	p.items = items
	p.pager.Reset(len(items))
}

// ResetCounted replaces the items but pages over total, a count reported by
// the data source that may exceed len(items).
func (p *Paged[T]) ResetCounted(items []T, total int) {
	if total <= 0 {
		total = len(items)
	}
	p.items = items
	p.pager.Reset(total)
}

func (p *Paged[T]) Clear() { p.Reset(nil) }

func (p *Paged[T]) Items() []T { return p.items }
func (p *Paged[T]) Len() int   { return len(p.items) }

// Page returns the current page of locally available items.
func (p *Paged[T]) Page() []T {
	lo, hi := p.pager.Bounds(len(p.items))
	return p.items[lo:hi]
}

func (p *Paged[T]) Next() bool       { return p.pager.Next() }
func (p *Paged[T]) Previous() bool   { return p.pager.Previous() }
func (p *Paged[T]) State() PageState { return p.pager.State() }
