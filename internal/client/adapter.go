package client

import (
	"stitch/internal/clipboard"
	"stitch/internal/types"
)

// Receiver implementation: the server proxy's calls map 1:1 onto the local
// screen, with clipboard bookkeeping layered on top.

// Enter makes this the active screen: the cursor warps to the entry point
// and the screen is told which modifiers are held.
func (c *Client) Enter(xAbs, yAbs int32, _ uint32, mask types.KeyModifierMask, _ bool) {
	c.active = true
	c.cfg.Screen.MouseMove(xAbs, yAbs)
	c.cfg.Screen.Enter(mask)
}

// Leave deactivates the screen and flushes owned clipboards so the server
// sees their current contents before acknowledging the switch.
func (c *Client) Leave() bool {
	c.cfg.Screen.Leave()
	c.active = false

	for id := clipboard.ID(0); id < clipboard.End; id++ {
		if c.ownClipboard[id] {
			c.sendClipboard(id)
		}
	}
	return true
}

// SetClipboard installs server-provided clipboard contents locally. Incoming
// content invalidates any prior ownership claim.
func (c *Client) SetClipboard(id clipboard.ID, cb *clipboard.Clipboard) {
	c.cfg.Screen.SetClipboard(id, cb)
	c.ownClipboard[id] = false
	c.sentClipboard[id] = false
}

// GrabClipboard records that a remote screen took clipboard ownership.
func (c *Client) GrabClipboard(id clipboard.ID) {
	c.cfg.Screen.GrabClipboard(id)
	c.ownClipboard[id] = false
	c.sentClipboard[id] = false
}

// SetClipboardDirty is not part of the client's contract.
func (c *Client) SetClipboardDirty(clipboard.ID, bool) {
	panic("client: SetClipboardDirty must not be called")
}

// GetClipboard reads clipboard id from the local screen into cb.
func (c *Client) GetClipboard(id clipboard.ID, cb *clipboard.Clipboard) bool {
	return c.cfg.Screen.GetClipboard(id, cb)
}

// Shape returns the local screen geometry.
func (c *Client) Shape() (x, y, w, h int32) { return c.cfg.Screen.Shape() }

// CursorPos returns the local cursor position.
func (c *Client) CursorPos() (x, y int32) { return c.cfg.Screen.CursorPos() }

func (c *Client) KeyDown(id types.KeyID, mask types.KeyModifierMask, button types.KeyButton) {
	c.cfg.Screen.KeyDown(id, mask, button)
}

func (c *Client) KeyRepeat(id types.KeyID, mask types.KeyModifierMask, count int32, button types.KeyButton) {
	c.cfg.Screen.KeyRepeat(id, mask, count, button)
}

func (c *Client) KeyUp(id types.KeyID, mask types.KeyModifierMask, button types.KeyButton) {
	c.cfg.Screen.KeyUp(id, mask, button)
}

func (c *Client) MouseDown(id types.ButtonID) { c.cfg.Screen.MouseDown(id) }

func (c *Client) MouseUp(id types.ButtonID) { c.cfg.Screen.MouseUp(id) }

func (c *Client) MouseMove(x, y int32) { c.cfg.Screen.MouseMove(x, y) }

func (c *Client) MouseRelativeMove(dx, dy int32) { c.cfg.Screen.MouseRelativeMove(dx, dy) }

func (c *Client) MouseWheel(xDelta, yDelta int32) { c.cfg.Screen.MouseWheel(xDelta, yDelta) }

func (c *Client) Screensaver(activate bool) { c.cfg.Screen.Screensaver(activate) }

func (c *Client) ResetOptions() { c.cfg.Screen.ResetOptions() }

func (c *Client) SetOptions(opts types.OptionsList) { c.cfg.Screen.SetOptions(opts) }

func (c *Client) GameDeviceButtons(id types.GameDeviceID, buttons types.GameDeviceButton) {
	c.cfg.Screen.GameDeviceButtons(id, buttons)
}

func (c *Client) GameDeviceSticks(id types.GameDeviceID, x1, y1, x2, y2 int16) {
	c.cfg.Screen.GameDeviceSticks(id, x1, y1, x2, y2)
}

func (c *Client) GameDeviceTriggers(id types.GameDeviceID, t1, t2 uint8) {
	c.cfg.Screen.GameDeviceTriggers(id, t1, t2)
}

func (c *Client) GameDeviceTimingReq() { c.cfg.Screen.GameDeviceTimingReq() }
