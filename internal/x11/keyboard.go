package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// KeyboardMapping reads the complete keycode to keysym table.
func (c *Connection) KeyboardMapping() (*KeyboardMapping, error) {
	conn := c.XUtil.Conn()
	setup := xproto.Setup(conn)
	count := int(setup.MaxKeycode) - int(setup.MinKeycode) + 1
	if count <= 0 {
		return nil, fmt.Errorf("bad keycode count: %d", count)
	}
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, byte(count)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyboard mapping: %w", err)
	}
	return &KeyboardMapping{
		MinKeycode:        setup.MinKeycode,
		MaxKeycode:        setup.MaxKeycode,
		KeysymsPerKeycode: int(reply.KeysymsPerKeycode),
		Keysyms:           reply.Keysyms,
	}, nil
}

func (c *Connection) ModifierMapping() (*xproto.GetModifierMappingReply, error) {
	reply, err := xproto.GetModifierMapping(c.XUtil.Conn()).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get modifier mapping: %w", err)
	}
	return reply, nil
}
