package game

// streamCreate spawns the enemies of rows coming into range. For the first
// ticks of a session one row per tick is swept from the row index equal to
// the tick, which fills everything already ahead of the start line. After
// that each row change brings in the row a fixed distance ahead.
func (w *World) streamCreate() {
	ahead := w.Tuning.TankCreateNumRowsAhead
	if w.Tick < len(w.Level.Rows) && w.Tick >= w.RowCurr-ahead {
		w.streamRow(w.Tick)
	}
	if w.RowCurr != w.RowPrev {
		if i := w.RowCurr - ahead; i >= 0 {
			w.streamRow(i)
		}
	}
}

// streamRow spawns the tank cells of row i. A row is streamed at most once.
func (w *World) streamRow(i int) {
	if i < 0 || i >= len(w.Level.Rows) || w.streamed[i] {
		return
	}
	w.streamed[i] = true
	for j, code := range w.Level.Rows[i].Cells {
		if len(code) == 0 || code[0] != 't' {
			continue
		}
		spec, err := DecodeTank(code)
		if err != nil {
			// rows are validated at load, so this is a corrupt level
			w.Log.Error().Err(err).Int("row", i).Int("col", j).Msg("tank cell")
			continue
		}
		w.spawnEnemy(spec, CellCenter(j, i), i)
	}
}

func (w *World) spawnEnemy(spec EnemySpec, pos Vec, row int) *Tank {
	e := newEnemyTank(w.newID(), w.nextEnemyIndex, spec, pos, row, w.Tuning)
	w.nextEnemyIndex++
	w.Enemies = append(w.Enemies, e)
	w.visual.Spawned(EntityRef{EntityTank, e.ID})
	tankEvent(w.Log.Debug(), e).Int("row", row).Msg("enemy spawned")
	w.record(e, "stream", "spawn", spec.Type.String()+" "+spec.Move.String(), float64(row))
	return e
}

// streamDestroy tears down enemies that fell far enough behind the player.
func (w *World) streamDestroy() {
	limit := w.Player.Pos.Y + platformHeight*float64(w.Tuning.TankDestroyNumRowsBehind)
	for _, e := range append([]*Tank(nil), w.Enemies...) {
		if e.Pos.Y > limit {
			w.destroyTank(e)
		}
	}
}
