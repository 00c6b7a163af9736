package useCases

import "github.com/larriantoniy/tg_relay_bot/internal/domain"

// Grouper собирает альбомы из потока сообщений.
// Альбом: максимальная серия подряд идущих сообщений с одним GroupID.
type Grouper struct {
	pending *domain.MessageGroup
}

// Push принимает следующее сообщение потока.
// closed: альбом, завершённый этим сообщением; single: само сообщение, если оно вне альбома.
func (g *Grouper) Push(m domain.Message) (closed *domain.MessageGroup, single *domain.Message) {
	if g.pending != nil && g.pending.ID == m.GroupID {
		g.pending.Messages = append(g.pending.Messages, m)
		return nil, nil
	}

	closed = g.Flush()

	if !m.Grouped() {
		return closed, &m
	}
	g.pending = &domain.MessageGroup{ID: m.GroupID, Messages: []domain.Message{m}}
	return closed, nil
}

// Flush закрывает незавершённый альбом (конец потока)
func (g *Grouper) Flush() *domain.MessageGroup {
	group := g.pending
	g.pending = nil
	return group
}
