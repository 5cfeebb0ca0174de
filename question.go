package dnswire

// Question is one entry of a packet's Question section (RFC 1035 §4.1.2).
// QClass's high bit doubles as the mDNS unicast-response bit (RFC 6762
// §5.4): "the sender is willing to accept unicast replies".
type Question struct {
	Name   Name
	QType  Type
	QClass Class
}

// UnicastResponseRequested reports the mDNS unicast-response bit.
func (q Question) UnicastResponseRequested() bool { return q.QClass.FlushOrUnicast() }

// WithUnicastResponseRequested returns q with the unicast-response bit set
// or cleared.
func (q Question) WithUnicastResponseRequested(set bool) Question {
	q.QClass = q.QClass.WithFlushOrUnicast(set)
	return q
}

func (q Question) writeTo(buf *Buffer, comp compressionMap) error {
	if err := writeCompressibleName(buf, q.Name, comp); err != nil {
		return err
	}
	if err := buf.WriteUint16(uint16(q.QType)); err != nil {
		return err
	}
	return buf.WriteUint16(uint16(q.QClass))
}

func parseQuestion(buf *Buffer) (Question, error) {
	name, err := ParseName(buf)
	if err != nil {
		return Question{}, err
	}
	qtype, err := buf.ReadUint16()
	if err != nil {
		return Question{}, err
	}
	qclass, err := buf.ReadUint16()
	if err != nil {
		return Question{}, err
	}
	return Question{Name: name, QType: Type(qtype), QClass: Class(qclass)}, nil
}
