package bind_group_provider

// BufferWrite describes one queued write into the buffer at Binding of Provider,
// starting at Offset bytes.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// sameRange reports whether w and o cover the same bytes of the same buffer.
func (w BufferWrite) sameRange(o BufferWrite) bool {
	return w.Provider == o.Provider && w.Binding == o.Binding &&
		w.Offset == o.Offset && len(w.Data) == len(o.Data)
}

// StageWrite queues w onto pending, replacing an earlier write to the same range so a
// queue that is not flushed for a while holds at most one write per range.
//
// Parameters:
//   - pending: the writes queued so far
//   - w: the write to queue
//
// Returns:
//   - []BufferWrite: the updated queue
func StageWrite(pending []BufferWrite, w BufferWrite) []BufferWrite {
	for i := range pending {
		if pending[i].sameRange(w) {
			pending[i].Data = w.Data
			return pending
		}
	}
	return append(pending, w)
}
