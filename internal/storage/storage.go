package storage

import (
	"context"
	"io"
)

// ObjectStore は外部のバイナリオブジェクト API を抽象化するインターフェース。
// アップロードは Declare でセッションを作成し、返されたハンドル宛に Transfer で
// 中身を送る 2 段階で行う。
type ObjectStore interface {
	// Declare はファイル名とバイト長を宣言し、セッションハンドルを返す。
	Declare(ctx context.Context, filename string, size int64) (handle string, err error)

	// Transfer は handle のセッションへファイル本体を送信する。
	Transfer(ctx context.Context, handle, filename, contentType string, data io.Reader) error
}
