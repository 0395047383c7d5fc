package envelope_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eluv-io/envelope-go/format/envelope"
	"github.com/eluv-io/envelope-go/format/parcel"
)

// contactV1 is the first revision of a record: name and age.
type contactV1 struct {
	Name string
	Age  int32
}

func (c *contactV1) WriteToParcel(p *parcel.Parcel) error {
	return envelope.Write(p, 1, func(s *envelope.Session) error {
		err := p.WriteString(c.Name)
		if err == nil {
			err = p.WriteInt32(c.Age)
		}
		return err
	})
}

func (c *contactV1) ReadFromParcel(p *parcel.Parcel) error {
	return envelope.Read(p, func(s *envelope.Session) (err error) {
		if c.Name, err = p.ReadString(); err != nil {
			return err
		}
		c.Age, err = p.ReadInt32()
		return err
	})
}

// contactV2 adds an email address in version 2.
type contactV2 struct {
	Name  string
	Age   int32
	Email string
}

func (c *contactV2) WriteToParcel(p *parcel.Parcel) error {
	return envelope.Write(p, 2, func(s *envelope.Session) error {
		err := p.WriteString(c.Name)
		if err == nil {
			err = p.WriteInt32(c.Age)
		}
		if err == nil {
			err = p.WriteString(c.Email)
		}
		return err
	})
}

func (c *contactV2) ReadFromParcel(p *parcel.Parcel) error {
	return envelope.Read(p, func(s *envelope.Session) (err error) {
		if c.Name, err = p.ReadString(); err != nil {
			return err
		}
		if c.Age, err = p.ReadInt32(); err != nil {
			return err
		}
		if s.AtLeast(2) {
			c.Email, err = p.ReadString()
		}
		return err
	})
}

func TestCompatibility(t *testing.T) {
	Convey("Given a newer writer and an older reader", t, func() {
		p := parcel.New()
		So((&contactV2{Name: "joe", Age: 42, Email: "joe@example.com"}).WriteToParcel(p), ShouldBeNil)
		So((&contactV2{Name: "ann", Age: 7, Email: "ann@example.com"}).WriteToParcel(p), ShouldBeNil)
		So(p.SetPosition(0), ShouldBeNil)

		Convey("the reader skips the unknown trailing field", func() {
			var c1, c2 contactV1
			So(c1.ReadFromParcel(p), ShouldBeNil)
			So(c1, ShouldResemble, contactV1{Name: "joe", Age: 42})

			Convey("and lands on the next record", func() {
				So(c2.ReadFromParcel(p), ShouldBeNil)
				So(c2, ShouldResemble, contactV1{Name: "ann", Age: 7})
				So(p.Remaining(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given an older writer and a newer reader", t, func() {
		p := parcel.New()
		So((&contactV1{Name: "joe", Age: 42}).WriteToParcel(p), ShouldBeNil)
		So((&contactV1{Name: "ann", Age: 7}).WriteToParcel(p), ShouldBeNil)
		So(p.SetPosition(0), ShouldBeNil)

		Convey("the reader does not read the missing field", func() {
			var c1, c2 contactV2
			So(c1.ReadFromParcel(p), ShouldBeNil)
			So(c1, ShouldResemble, contactV2{Name: "joe", Age: 42})

			Convey("and lands on the next record", func() {
				So(c2.ReadFromParcel(p), ShouldBeNil)
				So(c2, ShouldResemble, contactV2{Name: "ann", Age: 7})
				So(p.Remaining(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given writer and reader of the same revision", t, func() {
		p := parcel.New()
		in := contactV2{Name: "joe", Age: 42, Email: "joe@example.com"}
		So(in.WriteToParcel(p), ShouldBeNil)
		So(p.SetPosition(0), ShouldBeNil)

		Convey("all fields round-trip", func() {
			var out contactV2
			So(out.ReadFromParcel(p), ShouldBeNil)
			So(out, ShouldResemble, in)
		})
	})
}
