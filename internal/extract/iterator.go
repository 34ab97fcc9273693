package extract

// Iterator yields download items lazily, bufio.Scanner style. The fetch
// closure runs on the first Next call, so building an Iterator performs no
// network I/O. The sequence is finite and not restartable; extract again
// for fresh metadata.
type Iterator struct {
	fetch func() ([]DownloadItem, error)
	queue []DownloadItem
	item  DownloadItem
	err   error
	done  bool
}

func NewIterator(fetch func() ([]DownloadItem, error)) *Iterator {
	return &Iterator{fetch: fetch}
}

// Next advances to the next item, triggering the metadata fetch on first
// use. It returns false when the sequence is exhausted or a fetch error
// occurred; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if it.fetch != nil {
		it.queue, it.err = it.fetch()
		it.fetch = nil
		if it.err != nil {
			it.done = true
			return false
		}
	}
	if len(it.queue) == 0 {
		it.done = true
		return false
	}
	it.item = it.queue[0]
	it.queue = it.queue[1:]
	return true
}

// Item returns the item produced by the last successful Next call.
func (it *Iterator) Item() DownloadItem {
	return it.item
}

func (it *Iterator) Err() error {
	return it.err
}

// Collect drains the iterator. Convenience for callers that want all items
// up front anyway.
func (it *Iterator) Collect() ([]DownloadItem, error) {
	var items []DownloadItem
	for it.Next() {
		items = append(items, it.Item())
	}
	return items, it.Err()
}
