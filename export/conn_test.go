// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	. "github.com/pingcap/check"
)

var _ = Suite(&testConnSuite{})

type testConnSuite struct{}

func (s *testConnSuite) TestBuildDSN(c *C) {
	conf := DefaultConfig()
	conf.DatabasePath = "/data/shop.fdb"
	c.Assert(buildDSN(conf), Equals, "sysdba:masterkey@127.0.0.1:3050//data/shop.fdb?charset=NONE")

	conf.User = "reporter"
	conf.Password = "secret"
	conf.Host = "db.example.com"
	conf.Port = 3051
	conf.Charset = "UTF8"
	c.Assert(buildDSN(conf), Equals, "reporter:secret@db.example.com:3051//data/shop.fdb?charset=UTF8")
}

func (s *testConnSuite) TestParseEngineVersion(c *C) {
	v, err := parseEngineVersion("3.0.7")
	c.Assert(err, IsNil)
	c.Assert(v.Major, Equals, int64(3))
	c.Assert(v.Minor, Equals, int64(0))
	c.Assert(v.Patch, Equals, int64(7))

	// Short versions are padded so comparisons still work.
	v, err = parseEngineVersion("2.5")
	c.Assert(err, IsNil)
	c.Assert(v.Major, Equals, int64(2))
	c.Assert(v.Minor, Equals, int64(5))
	c.Assert(v.Patch, Equals, int64(0))

	v, err = parseEngineVersion(" 4.0.2 ")
	c.Assert(err, IsNil)
	c.Assert(v.Major, Equals, int64(4))

	_, err = parseEngineVersion("not a version")
	c.Assert(err, NotNil)
}
