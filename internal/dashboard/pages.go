package dashboard

import (
	"fmt"

	"transitdash/internal/present"
	"transitdash/internal/view"
)

type pageable interface {
	Next() bool
	Previous() bool
}

// listRef names a pageable sub-list of a view. The first ref is the default
// target of paging actions.
type listRef struct {
	name string
	list pageable
}

func page(viewName string, lists []listRef, a Action) error {
	target := a.List
	if target == "" && len(lists) > 0 {
		target = lists[0].name
	}
	for _, l := range lists {
		if l.name != target {
			continue
		}
		if a.Type == ActionNext {
			l.list.Next()
		} else {
			l.list.Previous()
		}
		return nil
	}
	return fmt.Errorf("%w: %s has no list %q", ErrUnsupportedAction, viewName, target)
}

func unsupported(viewName string, a Action) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupportedAction, a.Type, viewName)
}

func table(name, title string, columns []string, rows []present.Row, ps view.PageState) present.Table {
	return present.Table{Name: name, Title: title, Columns: columns, Rows: rows, Page: ps}
}

// listControl adapts a ListController's page cursor to pageable.
type listControl[T any] struct{ c *view.ListController[T] }

func (l listControl[T]) Next() bool     { return l.c.NextPage() }
func (l listControl[T]) Previous() bool { return l.c.PreviousPage() }
