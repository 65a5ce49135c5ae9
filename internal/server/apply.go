package server

import (
	"fmt"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/protocols"
	"github.com/bnema/wayime/internal/scenario"
	"github.com/bnema/wayime/internal/seat"
)

const (
	kindKeyboard        = "keyboard"
	kindTextInput       = "text_input"
	kindInputMethod     = "input_method"
	kindGrab            = "grab"
	kindPopup           = "popup"
	kindVirtualKeyboard = "virtual_keyboard"
)

// Apply performs one step. It must run on the event loop, or on a server
// whose loop is not running.
func (s *Server) Apply(step scenario.Step) error {
	if err := step.Validate(); err != nil {
		return err
	}

	switch step.Op {
	case "client.focus":
		client := s.objects.client(step.Client)
		s.seat.SetKeyboardFocus(s.objects.surface(step.Surface, client))
	case "client.unfocus":
		s.seat.SetKeyboardFocus(nil)

	case "keyboard.add":
		return s.addKeyboard(step)
	case "keyboard.key":
		kb, err := lookup(s.objects.keyboards, kindKeyboard, step.ID)
		if err != nil {
			return err
		}
		s.seat.NotifyKey(kb, keyEvent(step))
	case "keyboard.modifiers":
		kb, err := lookup(s.objects.keyboards, kindKeyboard, step.ID)
		if err != nil {
			return err
		}
		s.seat.NotifyModifiers(kb, modifiers(step))

	case "input_method.create":
		return s.createInputMethod(step)
	case "input_method.grab_keyboard":
		im, err := lookup(s.objects.inputMethods, kindInputMethod, step.InputMethod)
		if err != nil {
			return err
		}
		if err := s.objects.claim(step.ID, kindGrab); err != nil {
			return err
		}
		s.objects.grabs[step.ID] = im.GrabKeyboard(step.ID)
	case "input_method.popup":
		im, err := lookup(s.objects.inputMethods, kindInputMethod, step.InputMethod)
		if err != nil {
			return err
		}
		if err := s.objects.claim(step.ID, kindPopup); err != nil {
			return err
		}
		owner := s.objects.client(im.Client().Name())
		s.objects.popups[step.ID] = im.GetInputPopupSurface(step.ID, s.objects.surface(step.Surface, owner))
	case "input_method.commit_string", "input_method.preedit", "input_method.delete_surrounding",
		"input_method.commit", "input_method.destroy":
		return s.applyInputMethod(step)

	case "grab.release":
		grab, err := lookup(s.objects.grabs, kindGrab, step.ID)
		if err != nil {
			return err
		}
		grab.Release()
		delete(s.objects.grabs, step.ID)
		s.objects.release(step.ID)
	case "popup.destroy":
		popup, err := lookup(s.objects.popups, kindPopup, step.ID)
		if err != nil {
			return err
		}
		popup.Destroy()
		delete(s.objects.popups, step.ID)
		s.objects.release(step.ID)

	case "virtual_keyboard.create":
		if err := s.objects.claim(step.ID, kindVirtualKeyboard); err != nil {
			return err
		}
		vk := protocols.NewVirtualKeyboardV1(step.ID, s.objects.client(step.Client), s.seat)
		s.objects.virtualKeyboards[step.ID] = vk
		s.helper.HandleNewVirtualKeyboard(vk)
	case "virtual_keyboard.key", "virtual_keyboard.modifiers", "virtual_keyboard.destroy":
		return s.applyVirtualKeyboard(step)

	case "text_input.create":
		return s.createTextInput(step)
	default:
		return s.applyTextInput(step)
	}
	return nil
}

func (s *Server) addKeyboard(step scenario.Step) error {
	if err := s.objects.claim(step.ID, kindKeyboard); err != nil {
		return err
	}
	kb := seat.NewPhysicalKeyboard(step.ID)
	s.objects.keyboards[step.ID] = kb
	s.seat.AttachInputDevice(kb)
	return nil
}

func (s *Server) createTextInput(step scenario.Step) error {
	if err := s.objects.claim(step.ID, kindTextInput); err != nil {
		return err
	}
	client := s.objects.client(step.Client)

	var ti ime.TextInput
	if step.Version == "v1" {
		ti = protocols.NewTextInputV1(step.ID, client, s.out)
	} else {
		ti = protocols.NewTextInputV3(step.ID, client, s.seatFor(step.Seat), s.out)
	}
	s.objects.textInputs[step.ID] = ti
	s.helper.HandleNewTextInput(ti)
	return nil
}

func (s *Server) applyTextInput(step scenario.Step) error {
	ti, err := lookup(s.objects.textInputs, kindTextInput, step.ID)
	if err != nil {
		return err
	}

	switch t := ti.(type) {
	case *protocols.TextInputV3:
		return s.applyTextInputV3(t, step)
	case *protocols.TextInputV1:
		return s.applyTextInputV1(t, step)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, step.Op)
}

func (s *Server) applyTextInputV3(ti *protocols.TextInputV3, step scenario.Step) error {
	switch step.Op {
	case "text_input.enable":
		ti.Enable()
	case "text_input.disable":
		ti.Disable()
	case "text_input.set_surrounding":
		ti.SetSurroundingText(step.Text, step.Cursor, step.Anchor)
	case "text_input.set_cause":
		ti.SetTextChangeCause(changeCause(step.Cause))
	case "text_input.set_content_type":
		ti.SetContentType(step.Hints, step.Purpose)
	case "text_input.set_cursor_rect":
		ti.SetCursorRectangle(step.X, step.Y, step.Width, step.Height)
	case "text_input.commit":
		ti.Commit()
	case "text_input.destroy":
		s.destroyTextInput(ti, step.ID)
	default:
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, step.Op, ti.Version())
	}
	return nil
}

func (s *Server) applyTextInputV1(ti *protocols.TextInputV1, step scenario.Step) error {
	switch step.Op {
	case "text_input.activate":
		surface, err := lookup(s.objects.surfaces, "surface", step.Surface)
		if err != nil {
			return err
		}
		ti.Activate(s.seatFor(step.Seat), surface)
	case "text_input.deactivate":
		ti.Deactivate()
	case "text_input.set_surrounding":
		ti.SetSurroundingText(step.Text, step.Cursor, step.Anchor)
	case "text_input.set_content_type":
		ti.SetContentType(step.Hints, step.Purpose)
	case "text_input.set_cursor_rect":
		ti.SetCursorRectangle(step.X, step.Y, step.Width, step.Height)
	case "text_input.commit":
		ti.CommitState(step.Serial)
	case "text_input.destroy":
		s.destroyTextInput(ti, step.ID)
	default:
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, step.Op, ti.Version())
	}
	return nil
}

func (s *Server) destroyTextInput(ti interface{ Destroy() }, id string) {
	ti.Destroy()
	delete(s.objects.textInputs, id)
	s.objects.release(id)
}

func (s *Server) createInputMethod(step scenario.Step) error {
	if err := s.objects.claim(step.ID, kindInputMethod); err != nil {
		return err
	}
	im := protocols.NewInputMethodV2(step.ID, s.objects.client(step.Client), s.seatFor(step.Seat), s.out)
	s.objects.inputMethods[step.ID] = im
	s.helper.HandleNewInputMethod(im)
	return nil
}

func (s *Server) applyInputMethod(step scenario.Step) error {
	im, err := lookup(s.objects.inputMethods, kindInputMethod, step.ID)
	if err != nil {
		return err
	}

	switch step.Op {
	case "input_method.commit_string":
		im.CommitString(step.Text)
	case "input_method.preedit":
		im.SetPreeditString(step.Text, step.Begin, step.End)
	case "input_method.delete_surrounding":
		im.DeleteSurroundingText(step.Before, step.After)
	case "input_method.commit":
		im.Commit(step.Serial)
	case "input_method.destroy":
		im.Destroy()
		delete(s.objects.inputMethods, step.ID)
		s.objects.release(step.ID)
	}
	return nil
}

func (s *Server) applyVirtualKeyboard(step scenario.Step) error {
	vk, err := lookup(s.objects.virtualKeyboards, kindVirtualKeyboard, step.ID)
	if err != nil {
		return err
	}

	switch step.Op {
	case "virtual_keyboard.key":
		ev := keyEvent(step)
		vk.Key(ev.TimeMsec, ev.Key, ev.State)
	case "virtual_keyboard.modifiers":
		vk.Modifiers(modifiers(step))
	case "virtual_keyboard.destroy":
		vk.Destroy()
		delete(s.objects.virtualKeyboards, step.ID)
		s.objects.release(step.ID)
	}
	return nil
}

// seatFor returns the seat named name. Seats other than the server's own
// have no helper; objects created for them are ignored by it.
func (s *Server) seatFor(name string) *seat.Seat {
	if name == "" || name == s.seat.Name() {
		return s.seat
	}
	other, ok := s.objects.seats[name]
	if !ok {
		other = seat.New(name, s.out)
		s.objects.seats[name] = other
	}
	return other
}

func keyEvent(step scenario.Step) ime.KeyEvent {
	state := ime.KeyReleased
	if step.State == "pressed" {
		state = ime.KeyPressed
	}
	return ime.KeyEvent{TimeMsec: step.Time, Key: step.Key, State: state}
}

func modifiers(step scenario.Step) ime.Modifiers {
	return ime.Modifiers{
		Depressed: step.Depressed,
		Latched:   step.Latched,
		Locked:    step.Locked,
		Group:     step.Group,
	}
}

func changeCause(name string) ime.ChangeCause {
	if name == "other" {
		return ime.CauseOther
	}
	return ime.CauseInputMethod
}
