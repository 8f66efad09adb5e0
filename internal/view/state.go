package view

import "sync"

// Session хранит текущий экран каждого чата и то, что для него загружено
type Session struct {
	mu     sync.Mutex
	states map[int64]state
}

type state struct {
	params Params
	loaded DataSet
}

func NewSession() *Session {
	return &Session{states: make(map[int64]state)}
}

// Current - текущие параметры чата, ok == false если экрана еще не было
func (s *Session) Current(chatID int64) (Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	return st.params, ok
}

// Transition переводит чат в состояние p и возвращает то, что нужно
// догрузить. Пустой результат значит, что экран уже показан.
func (s *Session) Transition(chatID int64, p Params) []Need {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[chatID]
	missing := Required(p).Missing(st.loaded)
	s.states[chatID] = state{params: p, loaded: st.loaded}
	return missing
}

// Loaded отмечает данные экрана p загруженными, если чат все еще на нем.
// Набор старого экрана отбрасывается: данные могли измениться.
// false - чат уже ушел на другой экран, показывать p нельзя.
func (s *Session) Loaded(chatID int64, p Params) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	if !ok || st.params != p {
		return false
	}
	st.loaded = Required(p)
	s.states[chatID] = st
	return true
}

// Invalidate сбрасывает загруженные данные после изменений
func (s *Session) Invalidate(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[chatID]; ok {
		st.loaded = nil
		s.states[chatID] = st
	}
}

// InvalidateAll сбрасывает загруженные данные во всех чатах
func (s *Session) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.states {
		st.loaded = nil
		s.states[id] = st
	}
}
