package main

import (
	"jewelbots.ai/internal/persistence/indexdb"
	"jewelbots.ai/internal/sim/world"
)

type multiTickLogger struct {
	a world.TickLogger
	b *indexdb.SQLiteIndex
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	_ = m.b.WriteTick(entry)
	return nil
}

type multiAuditLogger struct {
	a world.AuditLogger
	b *indexdb.SQLiteIndex
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	_ = m.b.WriteAudit(entry)
	return nil
}
