/*
 *
 * pageflow - page-object UI automation for content management screens
 * Copyright (C) 2026 pageflow authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package widget

import (
	"context"
	"time"

	"github.com/liuxd6825/pageflow/common"
)

// ConfirmationDialog is a modal asking to confirm an action.
type ConfirmationDialog struct {
	*View
	ConfirmButton *Button
	CancelButton  *Button
}

const (
	dialogRoot    = "//div[@role='dialog' or contains(@class, 'pf-c-modal-box')]"
	dialogConfirm = ".//button[contains(@class, 'pf-m-primary') or contains(@class, 'pf-m-danger')]"
	dialogCancel  = ".//button[contains(@class, 'pf-m-link') or normalize-space(.)='Cancel']"
)

// NewConfirmationDialog binds the default modal dialog.
func NewConfirmationDialog(b common.Browser) *ConfirmationDialog {
	return NewCustomDialog(b, "ConfirmationDialog", dialogRoot, dialogConfirm, dialogCancel)
}

// NewCustomDialog binds a dialog with its own root and buttons.
func NewCustomDialog(b common.Browser, name, root, confirm, cancel string) *ConfirmationDialog {
	v := NewView(name, b, root)
	d := &ConfirmationDialog{
		View:          v,
		ConfirmButton: NewButton(v, confirm),
		CancelButton:  NewButton(v, cancel),
	}
	v.Add("confirm", d.ConfirmButton)
	v.Add("cancel", d.CancelButton)
	return d
}

// Confirm waits for the dialog and clicks the confirm button.
func (d *ConfirmationDialog) Confirm(ctx context.Context, timeout time.Duration) error {
	if err := d.WaitDisplayed(ctx, timeout); err != nil {
		return err
	}
	return d.ConfirmButton.Click(ctx)
}

// Cancel waits for the dialog and clicks the cancel button.
func (d *ConfirmationDialog) Cancel(ctx context.Context, timeout time.Duration) error {
	if err := d.WaitDisplayed(ctx, timeout); err != nil {
		return err
	}
	return d.CancelButton.Click(ctx)
}
