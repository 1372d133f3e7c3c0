package handler

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders/internal/domain/order"
)

// errInvalidBody is returned for payloads that are not the expected JSON.
var errInvalidBody = &requestError{msg: "Invalid request body"}

type requestError struct {
	msg   string
	cause error
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return e.cause }

func invalidBody(err error) error {
	return &requestError{msg: errInvalidBody.msg, cause: err}
}

func decodeCreateRequest(data []byte) (order.CreateRequest, error) {
	var req order.CreateRequest
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return req, errInvalidBody
	}

	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "items":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "discountCode":
			v, err := optString(d)
			if err != nil {
				return err
			}
			if v != nil {
				req.DiscountCode = *v
			}
		case "shippingAddress":
			v, err := optString(d)
			if err != nil {
				return err
			}
			if v != nil {
				req.ShippingAddress = *v
			}
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return req, invalidBody(err)
	}
	return req, nil
}

func decodeItem(d *jx.Decoder) (order.ItemRequest, error) {
	var item order.ItemRequest
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			switch d.Next() {
			case jx.String:
				v, err := d.Str()
				item.ProductID = v
				return err
			case jx.Number:
				v, err := d.Num()
				item.ProductID = v.String()
				return err
			default:
				return d.Skip()
			}
		case "quantity":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			item.Quantity = v
		case "price":
			switch d.Next() {
			case jx.Null:
				return d.Null()
			case jx.Number:
			default:
				return errors.New("price must be a number")
			}
			v, err := d.Num()
			if err != nil {
				return errors.Wrap(err, "price")
			}
			price, err := decimal.NewFromString(v.String())
			if err != nil {
				return errors.Wrap(err, "price")
			}
			item.Price = price
		default:
			return d.Skip()
		}
		return nil
	})
	return item, err
}

func decodeUpdateRequest(data []byte) (order.UpdateRequest, error) {
	var req order.UpdateRequest
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return req, errInvalidBody
	}

	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "discountCode":
			req.DiscountCode, err = optString(d)
		case "shippingAddress":
			req.ShippingAddress, err = optString(d)
		case "status":
			req.Status, err = optString(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return req, invalidBody(err)
	}
	return req, nil
}

// optString reads a string that may be null.
func optString(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func encodeSnapshots(e *jx.Encoder, orders []order.Snapshot) {
	e.ArrStart()
	for _, o := range orders {
		encodeSnapshot(e, o)
	}
	e.ArrEnd()
}

func encodeSnapshot(e *jx.Encoder, o order.Snapshot) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("price")
		encodeDecimal(e, item.Price)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("discountCode")
	e.Str(o.DiscountCode)
	e.FieldStart("shippingAddress")
	e.Str(o.ShippingAddress)
	e.FieldStart("total")
	encodeDecimal(e, o.Total)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.ObjEnd()
}

// encodeDecimal writes d as a JSON number without going through float64.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.RawStr(d.String())
}
