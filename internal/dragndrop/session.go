// Package dragndrop implements the target side of the XDND protocol.
//
// protocol: https://freedesktop.org/wiki/Specifications/XDND/
package dragndrop

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/x11"
)

// Version is the protocol version advertised in XdndAware.
const Version = 5

// acceptedTypes lists the data types a drop may carry, in preference order.
var acceptedTypes = []string{"text/uri-list"}

type atoms struct {
	enter      xproto.Atom
	position   xproto.Atom
	status     xproto.Atom
	drop       xproto.Atom
	finished   xproto.Atom
	leave      xproto.Atom
	typeList   xproto.Atom
	selection  xproto.Atom
	actionCopy xproto.Atom
	data       xproto.Atom
	incr       xproto.Atom
	accepted   []xproto.Atom
}

func loadAtoms(d x11.Display) (atoms, error) {
	var a atoms
	named := []struct {
		name string
		atom *xproto.Atom
	}{
		{"XdndEnter", &a.enter},
		{"XdndPosition", &a.position},
		{"XdndStatus", &a.status},
		{"XdndDrop", &a.drop},
		{"XdndFinished", &a.finished},
		{"XdndLeave", &a.leave},
		{"XdndTypeList", &a.typeList},
		{"XdndSelection", &a.selection},
		{"XdndActionCopy", &a.actionCopy},
		{"XDND_DATA", &a.data},
		{"INCR", &a.incr},
	}
	for _, n := range named {
		atom, err := d.Atom(n.name)
		if err != nil {
			return a, fmt.Errorf("failed to intern %s: %w", n.name, err)
		}
		*n.atom = atom
	}
	for _, name := range acceptedTypes {
		atom, err := d.Atom(name)
		if err != nil {
			return a, fmt.Errorf("failed to intern %s: %w", name, err)
		}
		a.accepted = append(a.accepted, atom)
	}
	return a, nil
}

// Session tracks the drag currently over one window. The drag source drives
// it; every Position is answered with a Status and every Drop with a
// Finished, including when no data type could be agreed on.
type Session struct {
	disp  x11.Display
	win   xproto.Window
	log   *slog.Logger
	atoms atoms

	state    State
	source   xproto.Window
	accepted xproto.Atom
}

func NewSession(disp x11.Display, win xproto.Window, log *slog.Logger) (*Session, error) {
	a, err := loadAtoms(disp)
	if err != nil {
		return nil, err
	}
	return &Session{disp: disp, win: win, log: log, atoms: a}, nil
}

func (s *Session) State() State { return s.state }

// Source returns the drag source window, 0 when idle.
func (s *Session) Source() xproto.Window { return s.source }

// Accepted returns the negotiated data type, 0 when none.
func (s *Session) Accepted() xproto.Atom { return s.accepted }

// HandleClientMessage processes ev if it is an XDND message and reports
// whether it was one. A message the current state cannot take is still
// answered where the protocol expects a reply, and ErrRejectedTransition is
// returned.
func (s *Session) HandleClientMessage(ev xproto.ClientMessageEvent) (bool, error) {
	if ev.Format != 32 || len(ev.Data.Data32) < 5 {
		return false, nil
	}
	data := ev.Data.Data32

	var msg Message
	switch ev.Type {
	case s.atoms.enter:
		msg = MsgEnter
	case s.atoms.position:
		msg = MsgPosition
	case s.atoms.drop:
		msg = MsgDrop
	case s.atoms.leave:
		msg = MsgLeave
	default:
		return false, nil
	}

	to, err := next(s.state, msg)
	if err != nil {
		return true, errors.Join(err, s.decline(msg, xproto.Window(data[0])))
	}

	switch msg {
	case MsgEnter:
		s.enter(data)
	case MsgPosition:
		err = s.sendStatus(s.source, s.accepted != 0)
	case MsgDrop:
		err = s.dropped(xproto.Timestamp(data[2]))
	case MsgLeave:
		s.reset()
	}
	s.state = to
	return true, err
}

func (s *Session) enter(data []uint32) {
	s.source = xproto.Window(data[0])
	s.accepted = 0

	var offered []xproto.Atom
	if data[1]&1 != 0 {
		// more than three types: the full list is on the source window
		prop, err := s.disp.GetProperty(s.source, s.atoms.typeList)
		if err != nil {
			s.log.Debug("failed to read drag type list", "source", s.source, "error", err)
		}
		for _, v := range prop.Uint32s() {
			offered = append(offered, xproto.Atom(v))
		}
	} else {
		for _, v := range data[2:5] {
			offered = append(offered, xproto.Atom(v))
		}
	}

	for _, t := range offered {
		if s.supports(t) {
			s.accepted = t
			break
		}
	}
	s.log.Debug("drag entered", "source", s.source, "type", s.disp.AtomName(s.accepted))
}

func (s *Session) supports(t xproto.Atom) bool {
	if t == 0 {
		return false
	}
	for _, a := range s.atoms.accepted {
		if a == t {
			return true
		}
	}
	return false
}

// dropped requests the data when a type was agreed on, then always tells the
// source the drop is finished and returns to idle.
func (s *Session) dropped(ts xproto.Timestamp) error {
	var convErr error
	accepted := s.accepted != 0
	if accepted {
		convErr = s.disp.ConvertSelection(s.win, s.atoms.selection, s.accepted, s.atoms.data, ts)
		if convErr != nil {
			convErr = fmt.Errorf("failed to request dropped data: %w", convErr)
		}
	}
	err := s.sendFinished(s.source, accepted)
	s.reset()
	return errors.Join(convErr, err)
}

func (s *Session) decline(msg Message, source xproto.Window) error {
	switch msg {
	case MsgPosition:
		return s.sendStatus(source, false)
	case MsgDrop:
		return s.sendFinished(source, false)
	}
	return nil
}

func (s *Session) reset() {
	s.source = 0
	s.accepted = 0
}

func (s *Session) sendStatus(dest xproto.Window, accept bool) error {
	var flags uint32
	if accept {
		flags = 1
	}
	msg := x11.ClientMessage{
		Window: dest,
		Type:   s.atoms.status,
		// no rectangle: send a position for every move
		Data: [5]uint32{uint32(s.win), flags, 0, 0, uint32(s.atoms.actionCopy)},
	}
	if err := s.disp.SendClientMessage(dest, xproto.EventMaskNoEvent, msg); err != nil {
		return fmt.Errorf("failed to send XdndStatus: %w", err)
	}
	return nil
}

func (s *Session) sendFinished(dest xproto.Window, accepted bool) error {
	msg := x11.ClientMessage{
		Window: dest,
		Type:   s.atoms.finished,
		Data:   [5]uint32{uint32(s.win)},
	}
	if accepted {
		msg.Data[1] = 1
		msg.Data[2] = uint32(s.atoms.actionCopy)
	}
	if err := s.disp.SendClientMessage(dest, xproto.EventMaskNoEvent, msg); err != nil {
		return fmt.Errorf("failed to send XdndFinished: %w", err)
	}
	return nil
}

// HandleSelectionNotify reads the data a drop converted into the window
// property and returns the dropped paths. It reports false for selections
// other than XdndSelection. The transfer may complete after the session has
// gone idle.
func (s *Session) HandleSelectionNotify(ev xproto.SelectionNotifyEvent) ([]string, bool, error) {
	if ev.Selection != s.atoms.selection {
		return nil, false, nil
	}
	if ev.Property == xproto.AtomNone {
		return nil, true, errors.New("drag source refused the data conversion")
	}

	prop, err := s.disp.GetProperty(s.win, ev.Property)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read dropped data: %w", err)
	}
	if err := s.disp.DeleteProperty(s.win, ev.Property); err != nil {
		s.log.Debug("failed to delete drop property", "error", err)
	}
	if prop.Type == s.atoms.incr {
		return nil, true, errors.New("incremental selection transfer not supported")
	}
	return ParseURIList(string(prop.Value)), true, nil
}

// SetAware advertises or withdraws drop support on win.
func SetAware(disp x11.Display, win xproto.Window, enabled bool) error {
	aware, err := disp.Atom("XdndAware")
	if err != nil {
		return fmt.Errorf("failed to intern XdndAware: %w", err)
	}
	if !enabled {
		return disp.DeleteProperty(win, aware)
	}
	return disp.ChangeProperty32(win, aware, xproto.AtomAtom, Version)
}
